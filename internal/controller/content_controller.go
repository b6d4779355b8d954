package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// ContentController 课程目录、检索、编写与文件上传
type ContentController struct {
	CourseService  *service.CourseService
	StorageService *service.StorageService
}

func NewContentController(courseService *service.CourseService, storageService *service.StorageService) *ContentController {
	return &ContentController{CourseService: courseService, StorageService: storageService}
}

// ListCourses godoc
// @Summary 课程列表
// @Description 学员看到的测验不包含正确答案
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   category query string false "分类名称"
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Router /api/courses [get]
func (c *ContentController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.List(ctx.Request.Context(), ctx.Query("category"), isAdmin(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// SearchCourses godoc
// @Summary 搜索课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   q query string true "关键词"
// @Param   limit query int false "条数" default(20)
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Router /api/courses/search [get]
func (c *ContentController) SearchCourses(ctx *gin.Context) {
	courses, err := c.CourseService.Search(ctx.Request.Context(), ctx.Query("q"), util.QueryInt(ctx, "limit", 0), isAdmin(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 创建后通知所有学员
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseInput true "课程内容"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "课程内容不合法"
// @Router /api/admin/courses [post]
func (c *ContentController) CreateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if !bindJSON(ctx, &in) {
		return
	}
	course, err := c.CourseService.Create(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// GetCourse godoc
// @Summary 管理端课程详情（含正确答案）
// @Tags 课程管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id} [get]
func (c *ContentController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Param   body body service.CourseInput true "课程内容"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id} [put]
func (c *ContentController) UpdateCourse(ctx *gin.Context) {
	var in service.CourseInput
	if !bindJSON(ctx, &in) {
		return
	}
	course, err := c.CourseService.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 同时删除学习进度、评价、讨论以及上传的文件
// @Tags 课程管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/courses/{id} [delete]
func (c *ContentController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadVideo godoc
// @Summary 上传课程视频
// @Description 可用时用 ffprobe 读取视频时长
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "视频文件"
// @Success 201 {object} util.Response{data=service.VideoUpload} "上传成功"
// @Router /api/admin/uploads/video [post]
func (c *ContentController) UploadVideo(ctx *gin.Context) {
	up, file, ok := formUpload(ctx, "file")
	if !ok {
		return
	}
	defer file.Close()

	res, err := c.StorageService.SaveVideo(ctx.Request.Context(), up)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// UploadTextbook godoc
// @Summary 上传课程教材（PDF）
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "PDF 文件"
// @Success 201 {object} util.Response{data=service.FileUpload} "上传成功"
// @Router /api/admin/uploads/textbook [post]
func (c *ContentController) UploadTextbook(ctx *gin.Context) {
	up, file, ok := formUpload(ctx, "file")
	if !ok {
		return
	}
	defer file.Close()

	res, err := c.StorageService.SaveTextbook(ctx.Request.Context(), up)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, res)
}

// UploadImage godoc
// @Summary 上传课程封面
// @Tags 课程管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "图片文件"
// @Success 201 {object} util.Response{data=service.FileUpload} "上传成功"
// @Router /api/admin/uploads/image [post]
func (c *ContentController) UploadImage(ctx *gin.Context) {
	up, file, ok := formUpload(ctx, "file")
	if !ok {
		return
	}
	defer file.Close()

	url, err := c.StorageService.SaveImage(ctx.Request.Context(), "courses", up)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, service.FileUpload{URL: url, Name: up.Filename})
}
