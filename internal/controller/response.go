package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"easy_promos/internal/api/dto"
	"easy_promos/internal/middleware"
	"easy_promos/internal/model"
	"easy_promos/internal/service"
	"easy_promos/pkg/logger"
)

// ==================== 响应辅助 ====================

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.Response{Code: 0, Message: "success", Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Response{Code: status, Message: message})
}

// writeError 按错误类型映射状态码，存储和上游错误只返回 fallback 文案
func writeError(c *gin.Context, err error, fallback string) {
	var ve *service.ValidationError
	var nf *service.NotFoundError
	var ue *service.UpstreamError

	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		fail(c, http.StatusNotFound, notFoundMessage(nf.Resource))
	case errors.As(err, &ue):
		logger.FromContext(c.Request.Context()).Error("Shopify 调用失败", zap.Error(err))
		fail(c, http.StatusBadGateway, fallback)
	default:
		logger.FromContext(c.Request.Context()).Error("请求处理失败", zap.Error(err))
		fail(c, http.StatusInternalServerError, fallback)
	}
	_ = c.Error(err)
}

func notFoundMessage(resource string) string {
	if resource == "store" {
		return service.MsgStoreNotFound
	}
	if resource == "" {
		return "Not found."
	}
	return strings.ToUpper(resource[:1]) + resource[1:] + " not found."
}

// parseID 解析路径 ID，失败时已写入 400
func parseID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name+".")
		return 0
	}
	return id
}

// currentStore 取会话对应的本地店铺，失败时已写入响应
func currentStore(c *gin.Context, stores *service.StoreService) *model.Store {
	store, err := stores.ResolveStore(c.Request.Context(), middleware.GetShop(c))
	if err != nil {
		writeError(c, err, service.MsgStoreNotFound)
		return nil
	}
	return store
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
