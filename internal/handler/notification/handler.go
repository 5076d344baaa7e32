package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/handler"
	"github.com/dhinakarr/realtors-app-sub001/internal/middleware"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/notification"
)

type Handler struct {
	svc notification.Service
}

func NewHandler(svc notification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.list)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.PUT("/:id/read", h.markRead)
		notifications.POST("", h.notify)
	}

	devices := r.Group("/devices")
	{
		devices.POST("", h.registerDevice)
		devices.DELETE("/:token", h.unregisterDevice)
	}
}

func (h *Handler) list(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := h.svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(notifications))
}

func (h *Handler) unreadCount(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user"))
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"count": count}))
}

func (h *Handler) markRead(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid notification id"))
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id, userID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

type notifyRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Message     string    `json:"message" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	ReferenceID string    `json:"reference_id" binding:"omitempty,reference"`
}

func (h *Handler) notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	audit := middleware.AuditFrom(c)
	if err := h.svc.Notify(c.Request.Context(), audit, req.UserID, req.Title, req.Message, req.Type, req.ReferenceID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(nil))
}

type registerDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

func (h *Handler) registerDevice(c *gin.Context) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid user"))
		return
	}

	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	audit := middleware.AuditFrom(c)
	if err := h.svc.RegisterDevice(c.Request.Context(), audit, userID, req.Token, req.Platform); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(nil))
}

func (h *Handler) unregisterDevice(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("token is required"))
		return
	}

	if err := h.svc.UnregisterDevice(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
