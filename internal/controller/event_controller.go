package controller

import (
	"hrm_backend/internal/service"
	"hrm_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventController 向HR看板推送实时业务事件
type EventController struct {
	Hub *service.EventHub
}

func NewEventController(hub *service.EventHub) *EventController {
	return &EventController{Hub: hub}
}

// @Summary 实时事件流
// @Description 通过WebSocket推送报名、审批、结业等事件；浏览器可用token查询参数传递JWT
// @Tags 事件
// @Security BearerAuth
// @Param token query string false "JWT Token"
// @Success 101 {string} string "Switching Protocols"
// @Router /api/events/ws [get]
func (c *EventController) StreamEvents(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	// Upgrade 失败时已经写入了HTTP错误响应
	if err := c.Hub.ServeWS(ctx.Writer, ctx.Request, actor.UserID); err != nil {
		logger.Log.Debug("Event feed upgrade failed", zap.Error(err))
	}
}
