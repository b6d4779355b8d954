package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	Hub                 *service.NotificationHub
}

func NewNotificationController(notifications *service.NotificationService, hub *service.NotificationHub) *NotificationController {
	return &NotificationController{NotificationService: notifications, Hub: hub}
}

// swagger:model AdminMessageRequest
type AdminMessageRequest struct {
	// UserID 为空或 "all" 时发给所有学员
	UserID  string `json:"userId"`
	Message string `json:"message" binding:"required"`
}

// GetNotifications godoc
// @Summary 我的通知
// @Description 按时间倒序返回通知（保持查看前的已读状态），随后全部标记为已读
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Notification} "成功"
// @Router /api/notifications [get]
func (c *NotificationController) GetNotifications(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	items, err := c.NotificationService.List(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// UnreadCount godoc
// @Summary 未读通知数
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=CountResponse} "成功"
// @Router /api/notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	n, err := c.NotificationService.UnreadCount(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, CountResponse{Count: n})
}

// MarkAllRead godoc
// @Summary 全部标为已读
// @Tags 通知
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=CountResponse} "标记的条数"
// @Router /api/notifications/read [post]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	n, err := c.NotificationService.MarkAllRead(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, CountResponse{Count: n})
}

// SendAdminMessage godoc
// @Summary 发送管理员消息
// @Tags 通知
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body AdminMessageRequest true "消息"
// @Success 200 {object} util.Response{data=CountResponse} "接收人数"
// @Router /api/admin/notifications [post]
func (c *NotificationController) SendAdminMessage(ctx *gin.Context) {
	var req AdminMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}
	n, err := c.NotificationService.AdminMessage(ctx.Request.Context(), req.UserID, req.Message)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, CountResponse{Count: int64(n)})
}

// Subscribe godoc
// @Summary 实时通知推送（WebSocket）
// @Description 浏览器无法设置请求头，使用 token 查询参数认证
// @Tags 通知
// @Param   token query string true "JWT"
// @Router /api/ws/notifications [get]
func (c *NotificationController) Subscribe(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	c.Hub.ServeWs(ctx.Writer, ctx.Request, claims.UserID)
}
