package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// AnalyticsController 管理端报表与统计
type AnalyticsController struct {
	ReportService    *service.ReportService
	AssistantService *service.AssistantService
}

func NewAnalyticsController(reports *service.ReportService, assistant *service.AssistantService) *AnalyticsController {
	return &AnalyticsController{ReportService: reports, AssistantService: assistant}
}

// TopicsResponse 讨论热点
// swagger:model TopicsResponse
type TopicsResponse struct {
	Topics []string `json:"topics"`
}

// UserReport godoc
// @Summary 用户报表
// @Tags 报表
// @Produce  json
// @Produce  text/csv
// @Security ApiKeyAuth
// @Param   format query string false "传 csv 时下载文件"
// @Success 200 {object} util.Response{data=model.UserReport} "成功"
// @Router /api/admin/reports/users [get]
func (c *AnalyticsController) UserReport(ctx *gin.Context) {
	report, err := c.ReportService.Users(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.respond(ctx, "user_report", report)
}

// CompletionReport godoc
// @Summary 课程完成报表
// @Description 只统计员工，按员工、课程列出已有测验成绩的记录
// @Tags 报表
// @Produce  json
// @Produce  text/csv
// @Security ApiKeyAuth
// @Param   format query string false "传 csv 时下载文件"
// @Success 200 {object} util.Response{data=model.CompletionReport} "成功"
// @Router /api/admin/reports/completions [get]
func (c *AnalyticsController) CompletionReport(ctx *gin.Context) {
	report, err := c.ReportService.Completions(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.respond(ctx, "course_completion_report", report)
}

// PerformanceReport godoc
// @Summary 课程表现报表
// @Tags 报表
// @Produce  json
// @Produce  text/csv
// @Security ApiKeyAuth
// @Param   format query string false "传 csv 时下载文件"
// @Success 200 {object} util.Response{data=model.PerformanceReport} "成功"
// @Router /api/admin/reports/performance [get]
func (c *AnalyticsController) PerformanceReport(ctx *gin.Context) {
	report, err := c.ReportService.Performance(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	c.respond(ctx, "course_performance_report", report)
}

// Overview godoc
// @Summary 平台概览
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.AnalyticsOverview} "成功"
// @Router /api/admin/analytics/overview [get]
func (c *AnalyticsController) Overview(ctx *gin.Context) {
	overview, err := c.ReportService.Overview(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}

// LearnerProgress godoc
// @Summary 全员学习进度
// @Description 返回 用户ID -> 课程ID -> 进度记录
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=map[string]map[string]model.ProgressRecord} "成功"
// @Router /api/admin/analytics/progress [get]
func (c *AnalyticsController) LearnerProgress(ctx *gin.Context) {
	progress, err := c.ReportService.LearnerProgress(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// DiscussionTopics godoc
// @Summary 讨论热点分析
// @Description 调用大模型总结最近讨论中的主要话题，最多 5 个
// @Tags 报表
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=TopicsResponse} "成功"
// @Failure 503 {object} util.Response "模型服务不可用"
// @Router /api/admin/analytics/topics [get]
func (c *AnalyticsController) DiscussionTopics(ctx *gin.Context) {
	topics, err := c.AssistantService.AnalyzeDiscussions(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, TopicsResponse{Topics: topics})
}

// respond 按 format 参数返回 JSON 或 CSV 附件
func (c *AnalyticsController) respond(ctx *gin.Context, name string, table model.Table) {
	if ctx.Query("format") != "csv" {
		util.Success(ctx, table)
		return
	}
	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, table); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("2006-01-02"))
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
