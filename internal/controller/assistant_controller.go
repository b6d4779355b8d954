package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// AssistantController 大模型辅助功能
type AssistantController struct {
	AssistantService *service.AssistantService
}

func NewAssistantController(assistant *service.AssistantService) *AssistantController {
	return &AssistantController{AssistantService: assistant}
}

// swagger:model DraftRequest
type DraftRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// swagger:model SourceTextRequest
type SourceTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// swagger:model ChatReply
type ChatReply struct {
	Reply string `json:"reply"`
}

// Chat godoc
// @Summary 学习助手对话
// @Description 传入对话历史（最后一条须为用户消息），可选课程ID作为上下文
// @Tags 助手
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ChatRequest true "对话"
// @Success 200 {object} util.Response{data=ChatReply} "成功"
// @Failure 503 {object} util.Response "模型服务不可用"
// @Router /api/assistant/chat [post]
func (c *AssistantController) Chat(ctx *gin.Context) {
	var req service.ChatRequest
	if !bindJSON(ctx, &req) {
		return
	}
	reply, err := c.AssistantService.Chat(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, ChatReply{Reply: reply})
}

// DraftCourse godoc
// @Summary 按主题生成课程草稿
// @Tags 助手
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body DraftRequest true "主题"
// @Success 200 {object} util.Response{data=service.CourseDraft} "成功"
// @Router /api/admin/assistant/draft [post]
func (c *AssistantController) DraftCourse(ctx *gin.Context) {
	var req DraftRequest
	if !bindJSON(ctx, &req) {
		return
	}
	draft, err := c.AssistantService.DraftCourse(ctx.Request.Context(), req.Topic)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// DraftFromText godoc
// @Summary 从长文本生成课程草稿
// @Description 文本过长时会被截断
// @Tags 助手
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SourceTextRequest true "原始材料"
// @Success 200 {object} util.Response{data=service.CourseDraft} "成功"
// @Router /api/admin/assistant/draft-from-text [post]
func (c *AssistantController) DraftFromText(ctx *gin.Context) {
	var req SourceTextRequest
	if !bindJSON(ctx, &req) {
		return
	}
	draft, err := c.AssistantService.DraftCourseFromText(ctx.Request.Context(), req.Text)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// GenerateQuiz godoc
// @Summary 生成测验题
// @Description 传课程ID时使用课程全部文本，否则使用 content
// @Tags 助手
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuizRequest true "来源"
// @Success 200 {object} util.Response{data=[]model.QuizQuestion} "成功"
// @Router /api/admin/assistant/quiz [post]
func (c *AssistantController) GenerateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if !bindJSON(ctx, &req) {
		return
	}
	questions, err := c.AssistantService.GenerateQuiz(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if questions == nil {
		questions = []model.QuizQuestion{}
	}
	util.Success(ctx, questions)
}
