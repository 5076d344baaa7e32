package event

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dhinakarr/realtors-app-sub001/internal/handler"
	"github.com/dhinakarr/realtors-app-sub001/internal/middleware"
	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/service/event"
)

// Handler accepts domain events from the other backend services that do not
// talk to the broker directly. It is mounted behind auth like every other
// mutating surface.
type Handler struct {
	emitter *event.Emitter
}

func NewHandler(emitter *event.Emitter) *Handler {
	return &Handler{emitter: emitter}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/events", h.emit)
}

type emitRequest struct {
	Type    string                 `json:"type" binding:"required,oneof=SALE_CREATED PAYMENT_RECEIVED SALE_CANCELLED"`
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

func (h *Handler) emit(c *gin.Context) {
	var req emitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	audit := middleware.AuditFrom(c)
	if err := h.emitter.Emit(c.Request.Context(), audit, model.EventType(req.Type), req.Payload); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(nil))
}
