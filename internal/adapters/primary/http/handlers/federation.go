package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"fedclassroom/internal/adapters/primary/http/dto"
	"fedclassroom/internal/core/ports/output"
)

// ============================================================================
// Global Model
// ============================================================================

func (h *Handler) GetGlobalModel(c *gin.Context) {
	model, err := h.globalModelSvc.Get(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("get global model failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGlobalModelResponse(model))
}

func (h *Handler) PublishGlobalModel(c *gin.Context) {
	var req dto.PublishGlobalModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.globalModelSvc.Publish(c.Request.Context(), req.ModelState)
	if err != nil {
		log.WithError(err).Error("publish global model failed")
		mapDomainError(c, err)
		return
	}

	log.WithField("version", model.Version).Info("global model published")
	c.JSON(http.StatusOK, dto.ToGlobalModelResponse(model))
}

// ============================================================================
// Local Updates
// ============================================================================

func (h *Handler) TrainLocal(c *gin.Context) {
	var req dto.TrainLocalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update, err := h.updateSvc.Submit(c.Request.Context(), req.ModelState, *req.LocalAccuracy)
	if err != nil {
		log.WithError(err).Warn("local update rejected")
		mapDomainError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"update_id":      update.ID,
		"model_version":  update.ModelVersion,
		"local_accuracy": update.LocalAccuracy,
		"parameters":     update.ParameterCount,
	}).Info("local update received")

	c.JSON(http.StatusAccepted, dto.TrainLocalResponse{
		Status:       "received",
		ID:           update.ID,
		ModelVersion: update.ModelVersion,
	})
}

func (h *Handler) ListLocalUpdates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	updates, total, err := h.updateSvc.List(c.Request.Context(), ports.UpdateListFilter{
		ModelVersion: c.Query("model_version"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		log.WithError(err).Error("list local updates failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.LocalUpdateResponse, 0, len(updates))
	for _, u := range updates {
		items = append(items, dto.ToLocalUpdateResponse(u, false))
	}

	c.JSON(http.StatusOK, dto.ListLocalUpdatesResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetLocalUpdate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update id"})
		return
	}

	update, err := h.updateSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToLocalUpdateResponse(update, true))
}
