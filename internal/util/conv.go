package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QueryInt 读取整数查询参数，缺失或非法时返回默认值
func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// QueryBool 解析 true/false，缺失时返回 nil
func QueryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
