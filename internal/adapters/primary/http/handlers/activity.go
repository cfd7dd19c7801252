package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/adapters/primary/http/dto"
	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/ports/output"
)

func (h *Handler) TrackActivity(c *gin.Context) {
	var req dto.TrackActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := req.ToDomain()
	if err != nil {
		mapDomainError(c, err)
		return
	}

	if _, err := h.activitySvc.Track(c.Request.Context(), activity); err != nil {
		log.WithError(err).WithField("user_id", req.UserID).Warn("track activity failed")
		mapDomainError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"user_id":  activity.UserID,
		"app_name": domain.DisplayName(activity.AppName, activity.WindowTitle),
		"duration": activity.DurationSeconds,
	}).Debug("activity tracked")

	c.JSON(http.StatusOK, gin.H{"status": "tracked"})
}

func (h *Handler) ListActivities(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)

	activities, total, err := h.activitySvc.List(c.Request.Context(), ports.ActivityListFilter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		log.WithError(err).Error("list activities failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListActivitiesResponse{
		Items:      activities,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(activities),
	})
}

func (h *Handler) GetStudentDashboard(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidUserID.Error()})
		return
	}

	dashboard, err := h.activitySvc.StudentDashboard(c.Request.Context(), userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("student dashboard failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) GetClassroomStats(c *gin.Context) {
	stats, err := h.activitySvc.ClassroomStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("classroom stats failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
