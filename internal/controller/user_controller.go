package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/repository"
	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// UserController 管理端用户管理与排行榜
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model PointsRequest
type PointsRequest struct {
	Points *int `json:"points" binding:"required"`
}

// GetUsers godoc
// @Summary 获取用户列表
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   role query string false "角色筛选 Employee/Admin"
// @Param   approved query bool false "审批状态"
// @Param   search query string false "姓名或邮箱关键词"
// @Success 200 {object} util.Response{data=[]model.User} "成功"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	filter := repository.UserFilter{
		Role:     model.UserRole(ctx.Query("role")),
		Approved: util.QueryBool(ctx, "approved"),
		Keyword:  ctx.Query("search"),
	}
	if filter.Role != "" && !filter.Role.Valid() {
		util.BadRequest(ctx, "role must be Employee or Admin")
		return
	}
	users, err := c.UserService.List(ctx.Request.Context(), filter)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// CreateUser godoc
// @Summary 创建用户
// @Description 管理员创建的账号直接通过审批
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateUserRequest true "用户信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/admin/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req service.CreateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.Create(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// UpdateUser godoc
// @Summary 修改用户姓名或角色
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "用户ID"
// @Param   body body service.UpdateUserRequest true "修改内容"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.UserService.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ApproveUser godoc
// @Summary 审批员工注册
// @Description 审批通过后向员工发送欢迎通知
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/admin/users/{id}/approve [post]
func (c *UserController) ApproveUser(ctx *gin.Context) {
	user, err := c.UserService.Approve(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary 删除用户
// @Tags 用户管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "不能删除自己"
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	actor := util.GetUserFromContext(ctx)
	if err := c.UserService.Delete(ctx.Request.Context(), actor.UserID, ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetPoints godoc
// @Summary 修正用户积分
// @Tags 用户管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "用户ID"
// @Param   body body PointsRequest true "新的积分"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/users/{id}/points [put]
func (c *UserController) SetPoints(ctx *gin.Context) {
	var req PointsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.UserService.CorrectPoints(ctx.Request.Context(), ctx.Param("id"), *req.Points); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Leaderboard godoc
// @Summary 积分排行榜
// @Tags 激励
// @Produce  json
// @Security ApiKeyAuth
// @Param   limit query int false "条数" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry} "成功"
// @Router /api/leaderboard [get]
func (c *UserController) Leaderboard(ctx *gin.Context) {
	board, err := c.UserService.Leaderboard(ctx.Request.Context(), util.QueryInt(ctx, "limit", 0))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, board)
}
