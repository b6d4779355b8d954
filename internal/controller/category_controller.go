package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

type CategoryController struct {
	CategoryService *service.CategoryService
}

func NewCategoryController(categories *service.CategoryService) *CategoryController {
	return &CategoryController{CategoryService: categories}
}

// ListCategories godoc
// @Summary 课程分类列表
// @Tags 分类
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CourseCategory} "成功"
// @Router /api/categories [get]
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	items, err := c.CategoryService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// CreateCategory godoc
// @Summary 创建分类
// @Tags 分类
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CategoryInput true "分类名称"
// @Success 201 {object} util.Response{data=model.CourseCategory} "创建成功"
// @Failure 409 {object} util.Response "名称已存在"
// @Router /api/admin/categories [post]
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(ctx, &in) {
		return
	}
	item, err := c.CategoryService.Create(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// RenameCategory godoc
// @Summary 分类改名
// @Description 所有使用旧名称的课程同步改名
// @Tags 分类
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "分类ID"
// @Param   body body service.CategoryInput true "新名称"
// @Success 200 {object} util.Response{data=model.CourseCategory} "成功"
// @Router /api/admin/categories/{id} [put]
func (c *CategoryController) RenameCategory(ctx *gin.Context) {
	var in service.CategoryInput
	if !bindJSON(ctx, &in) {
		return
	}
	item, err := c.CategoryService.Rename(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// DeleteCategory godoc
// @Summary 删除分类
// @Tags 分类
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "分类ID"
// @Success 200 {object} util.Response "成功"
// @Failure 409 {object} util.Response "仍有课程使用该分类"
// @Router /api/admin/categories/{id} [delete]
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	if err := c.CategoryService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
