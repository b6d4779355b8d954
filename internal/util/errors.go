package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"corp_edu_backend/internal/apperr"
	"corp_edu_backend/internal/llm"
	"corp_edu_backend/pkg/logger"
)

// StatusOf 把错误分类映射为 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	}
	switch llm.KindOf(err) {
	case llm.KindRateLimited:
		return http.StatusTooManyRequests
	case llm.KindUnavailable, llm.KindInvalidOutput, llm.KindTruncated:
		return http.StatusBadGateway
	case llm.KindConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError 按错误分类写响应；持久化等内部错误记录日志，不把细节返回给调用方
func HandleError(c *gin.Context, err error) {
	status := StatusOf(err)
	if status < http.StatusInternalServerError {
		Error(c, status, apperr.Message(err))
		return
	}

	logger.Log.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.Error(err))
	switch {
	case errors.Is(err, apperr.ErrPersistence):
		Error(c, status, apperr.Message(err))
	case llm.KindOf(err) != "":
		Error(c, status, "AI assistant is unavailable, please try again later")
	default:
		InternalServerError(c)
	}
}
