package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 同步限流中间件 ====================

// SyncRateLimit 按店铺 + 同步类型限流，需挂在 SessionAuth 之后
//
// 使用示例:
//
//	limiter := middleware.NewSyncRateLimiter()
//	store.POST("/sync",
//	    middleware.SyncRateLimit(limiter, middleware.SyncTypeStore, 0),
//	    storeCtl.Sync,
//	)
//
// interval 为 0 时使用默认值，处理结果为 5xx 时释放冷却
func SyncRateLimit(limiter *SyncRateLimiter, syncType SyncType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(syncType)
	}

	return func(c *gin.Context) {
		shop := GetShop(c)
		if shop == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未获取到店铺信息",
			})
			c.Abort()
			return
		}

		key := ShopSyncKey(shop, syncType)
		result := limiter.Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter+1))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": retryAfter,
					"sync_type":   syncType,
				},
			})
			c.Abort()
			return
		}

		c.Next()

		// 服务端或上游失败不占用冷却时间，允许立即重试
		if c.Writer.Status() >= http.StatusInternalServerError {
			limiter.Reset(key)
		}
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
