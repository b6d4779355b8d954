package controller

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/service"
	"corp_edu_backend/internal/util"
)

// IDResponse 只返回资源 ID
// swagger:model IDResponse
type IDResponse struct {
	ID string `json:"id"`
}

// CountResponse 批量操作影响的条数
// swagger:model CountResponse
type CountResponse struct {
	Count int64 `json:"count"`
}

// currentUser 从库中读取当前登录用户，失败时已写好响应
func currentUser(ctx *gin.Context, auth *service.AuthService) (*model.User, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	user, err := auth.CurrentUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return nil, false
	}
	return user, true
}

func isAdmin(ctx *gin.Context) bool {
	claims := util.GetUserFromContext(ctx)
	return claims != nil && claims.Role == model.RoleAdmin
}

func bindJSON(ctx *gin.Context, v any) bool {
	if err := ctx.ShouldBindJSON(v); err != nil {
		util.BadRequest(ctx, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// formUpload 打开表单文件，调用方负责关闭返回的文件
func formUpload(ctx *gin.Context, field string) (service.Upload, multipart.File, bool) {
	header, err := ctx.FormFile(field)
	if err != nil {
		util.BadRequest(ctx, "missing file field \""+field+"\"")
		return service.Upload{}, nil, false
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return service.Upload{}, nil, false
	}
	return service.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, file, true
}
