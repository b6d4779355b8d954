package controller

import (
	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{AuthService: authService, UserService: userService}
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// Register godoc
// @Summary 员工注册
// @Description 注册后需要管理员审批才能登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "注册信息"
// @Success 201 {object} util.Response{data=model.User} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// Login godoc
// @Summary 用户登录
// @Description 验证用户身份并返回JWT令牌，未审批的员工无法登录
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=service.LoginResult} "登录成功"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Failure 403 {object} util.Response "账号待审批"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}
	res, err := c.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// GetProfile godoc
// @Summary 当前用户信息
// @Tags 个人资料
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 修改姓名
// @Tags 个人资料
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateProfileRequest true "新的姓名"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	updated, err := c.UserService.UpdateName(ctx.Request.Context(), user.ID, req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// UploadAvatar godoc
// @Summary 上传头像
// @Tags 个人资料
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "头像图片"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "文件类型不支持"
// @Router /api/profile/avatar [post]
func (c *AuthController) UploadAvatar(ctx *gin.Context) {
	user, ok := currentUser(ctx, c.AuthService)
	if !ok {
		return
	}
	up, file, ok := formUpload(ctx, "file")
	if !ok {
		return
	}
	defer file.Close()

	updated, err := c.UserService.UpdateAvatar(ctx.Request.Context(), user.ID, up)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}
