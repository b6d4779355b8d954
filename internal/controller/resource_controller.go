package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// ResourceController 外部学习资源库
type ResourceController struct {
	ResourceService *service.ResourceService
}

func NewResourceController(resources *service.ResourceService) *ResourceController {
	return &ResourceController{ResourceService: resources}
}

// ListResources godoc
// @Summary 学习资源列表
// @Tags 资源
// @Produce  json
// @Security ApiKeyAuth
// @Param   type query string false "book/article/video"
// @Success 200 {object} util.Response{data=[]model.ExternalResource} "成功"
// @Router /api/resources [get]
func (c *ResourceController) ListResources(ctx *gin.Context) {
	items, err := c.ResourceService.List(ctx.Request.Context(), ctx.Query("type"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// CreateResource godoc
// @Summary 添加学习资源
// @Tags 资源
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ResourceInput true "资源"
// @Success 201 {object} util.Response{data=model.ExternalResource} "创建成功"
// @Router /api/admin/resources [post]
func (c *ResourceController) CreateResource(ctx *gin.Context) {
	var in service.ResourceInput
	if !bindJSON(ctx, &in) {
		return
	}
	item, err := c.ResourceService.Create(ctx.Request.Context(), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// UpdateResource godoc
// @Summary 修改学习资源
// @Tags 资源
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "资源ID"
// @Param   body body service.ResourceInput true "资源"
// @Success 200 {object} util.Response{data=model.ExternalResource} "成功"
// @Router /api/admin/resources/{id} [put]
func (c *ResourceController) UpdateResource(ctx *gin.Context) {
	var in service.ResourceInput
	if !bindJSON(ctx, &in) {
		return
	}
	item, err := c.ResourceService.Update(ctx.Request.Context(), ctx.Param("id"), in)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// DeleteResource godoc
// @Summary 删除学习资源
// @Tags 资源
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "资源ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/resources/{id} [delete]
func (c *ResourceController) DeleteResource(ctx *gin.Context) {
	if err := c.ResourceService.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
