package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// CommunityController 课程讨论区
type CommunityController struct {
	AuthService       *service.AuthService
	DiscussionService *service.DiscussionService
}

func NewCommunityController(auth *service.AuthService, discussions *service.DiscussionService) *CommunityController {
	return &CommunityController{AuthService: auth, DiscussionService: discussions}
}

// swagger:model PostRequest
type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

// GetThread godoc
// @Summary 课程讨论
// @Description 返回讨论树，新的主题帖在前
// @Tags 讨论
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=[]model.DiscussionNode} "成功"
// @Router /api/courses/{id}/discussion [get]
func (c *CommunityController) GetThread(ctx *gin.Context) {
	tree, err := c.DiscussionService.Thread(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// CreatePost godoc
// @Summary 发表主题帖
// @Tags 讨论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   body body PostRequest true "内容"
// @Success 201 {object} util.Response{data=[]model.DiscussionNode} "更新后的讨论树"
// @Router /api/courses/{id}/discussion [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	var req PostRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	tree, err := c.DiscussionService.AddRootPost(ctx.Request.Context(), user, ctx.Param("id"), req.Text)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, tree)
}

// Reply godoc
// @Summary 回复帖子
// @Description 可以回复任意层级的帖子
// @Tags 讨论
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   postId path string true "被回复的帖子ID"
// @Param   body body PostRequest true "内容"
// @Success 201 {object} util.Response{data=[]model.DiscussionNode} "更新后的讨论树"
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/courses/{id}/discussion/{postId}/replies [post]
func (c *CommunityController) Reply(ctx *gin.Context) {
	var req PostRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	tree, err := c.DiscussionService.AddReply(ctx.Request.Context(), user, ctx.Param("id"), ctx.Param("postId"), req.Text)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, tree)
}

// DeleteDiscussion godoc
// @Summary 清空课程讨论
// @Tags 讨论
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=CountResponse} "删除的帖子数"
// @Router /api/admin/courses/{id}/discussion [delete]
func (c *CommunityController) DeleteDiscussion(ctx *gin.Context) {
	n, err := c.DiscussionService.DeleteDiscussion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, CountResponse{Count: n})
}
