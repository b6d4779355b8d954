package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// LearningController 学员学习流程：浏览、完成模块、测验、评价、证书
type LearningController struct {
	AuthService     *service.AuthService
	ProgressService *service.ProgressService
	BadgeService    *service.BadgeService
}

func NewLearningController(auth *service.AuthService, progress *service.ProgressService, badges *service.BadgeService) *LearningController {
	return &LearningController{AuthService: auth, ProgressService: progress, BadgeService: badges}
}

// swagger:model QuizSubmission
type QuizSubmission struct {
	Answers []string `json:"answers" binding:"required"`
}

// swagger:model ReviewRequest
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// ViewCourse godoc
// @Summary 课程详情
// @Description 返回课程、当前学员的进度、测验状态和讨论，并记录最近浏览
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseView} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *LearningController) ViewCourse(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	view, err := c.ProgressService.ViewCourse(ctx.Request.Context(), user, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// CompleteModule godoc
// @Summary 完成模块
// @Description 首次完成得 10 分；重复完成不加分
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=service.ModuleResult} "成功"
// @Router /api/courses/{id}/modules/{moduleId}/complete [post]
func (c *LearningController) CompleteModule(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	res, err := c.ProgressService.CompleteModule(ctx.Request.Context(), user, ctx.Param("id"), ctx.Param("moduleId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description 完成全部模块后才能提交；首次通过得 100 分并获得证书
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   body body QuizSubmission true "按题目顺序的答案"
// @Success 200 {object} util.Response{data=service.QuizResult} "成功"
// @Failure 400 {object} util.Response "测验未解锁"
// @Router /api/courses/{id}/quiz [post]
func (c *LearningController) SubmitQuiz(ctx *gin.Context) {
	var req QuizSubmission
	if !bindJSON(ctx, &req) {
		return
	}
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	res, err := c.ProgressService.SubmitQuiz(ctx.Request.Context(), user, ctx.Param("id"), req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// RateCourse godoc
// @Summary 评价课程
// @Description 评分 1-5，重复评价覆盖之前的评价
// @Tags 学习
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   body body ReviewRequest true "评价"
// @Success 200 {object} util.Response{data=model.Review} "成功"
// @Router /api/courses/{id}/reviews [post]
func (c *LearningController) RateCourse(ctx *gin.Context) {
	var req ReviewRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	review, err := c.ProgressService.RateCourse(ctx.Request.Context(), user, ctx.Param("id"), req.Rating, req.Comment)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// GetCertificate godoc
// @Summary 获取课程证书
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.CertificateData} "成功"
// @Failure 404 {object} util.Response "课程尚未完成"
// @Router /api/courses/{id}/certificate [get]
func (c *LearningController) GetCertificate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	cert, err := c.ProgressService.Certificate(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}

// MyProgress godoc
// @Summary 我的学习进度
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=map[string]model.ProgressRecord} "按课程ID索引"
// @Router /api/progress [get]
func (c *LearningController) MyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.ProgressService.MyProgress(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// Badges godoc
// @Summary 徽章目录
// @Description 返回全部徽章及当前用户是否已获得
// @Tags 激励
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.BadgeView} "成功"
// @Router /api/badges [get]
func (c *LearningController) Badges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	badges, err := c.BadgeService.Catalog(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}
