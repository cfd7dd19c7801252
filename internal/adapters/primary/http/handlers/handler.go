package handlers

import (
	"fedclassroom/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	globalModelSvc *services.GlobalModelService
	updateSvc      *services.LocalUpdateService
	activitySvc    *services.ActivityService
}

func New(
	globalModelSvc *services.GlobalModelService,
	updateSvc *services.LocalUpdateService,
	activitySvc *services.ActivityService,
) *Handler {
	return &Handler{
		globalModelSvc: globalModelSvc,
		updateSvc:      updateSvc,
		activitySvc:    activitySvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Federated learning
	fl := r.Group("/fl")
	fl.GET("/global_model", h.GetGlobalModel)
	fl.PUT("/global_model", h.PublishGlobalModel)
	fl.POST("/train_local", h.TrainLocal)
	fl.GET("/updates", h.ListLocalUpdates)
	fl.GET("/updates/:id", h.GetLocalUpdate)

	// Activity tracking
	r.POST("/track_activity", h.TrackActivity)

	// Dashboards
	api := r.Group("/api/v1")
	api.GET("/activities", h.ListActivities)
	api.GET("/students/:id/dashboard", h.GetStudentDashboard)
	api.GET("/classroom/stats", h.GetClassroomStats)
}
