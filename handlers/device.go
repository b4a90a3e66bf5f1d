package handlers

import (
	"net/http"
	"strings"
	"time"

	deviceRepo "vastramitra/database/repository/device"
	"vastramitra/models"
	"vastramitra/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler registers where the caller's notifications are pushed.
type DeviceHandler struct {
	repo   deviceRepo.DeviceRepository
	logger *zap.Logger
}

func NewDeviceHandler(repo deviceRepo.DeviceRepository, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{repo: repo, logger: logger}
}

type deviceInput struct {
	FCMToken string `json:"fcmToken"`
	Phone    string `json:"phone"`
}

// RegisterDevice stores the caller's FCM token and phone for delivery.
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var in deviceInput
	if !bindJSON(c, &in) {
		return
	}
	in.FCMToken = strings.TrimSpace(in.FCMToken)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FCMToken == "" && in.Phone == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "fcmToken or phone is required")
		return
	}

	target := models.PushTarget{
		RecipientID: actor.ID,
		FCMToken:    in.FCMToken,
		Phone:       in.Phone,
		UpdatedAt:   time.Now(),
	}
	if err := h.repo.Upsert(c.Request.Context(), target); err != nil {
		h.logger.Error("Failed to register device", zap.String("recipientId", actor.ID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to register device", err.Error())
		return
	}
	c.JSON(http.StatusOK, target)
}
