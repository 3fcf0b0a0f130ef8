package middleware

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"easy_promos/pkg/logger"
)

// ==================== 审计上下文 ====================

type auditContextKey struct{}

// AuditInfo 当前操作人
type AuditInfo struct {
	UserID int64  // Shopify 员工 ID
	Shop   string // myshopify 域名
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, userID int64, shop string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &AuditInfo{
		UserID: userID,
		Shop:   shop,
	})
}

// GetAuditInfo 从 context 获取审计信息
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// GetAuditUserID 从 context 获取审计用户 ID
func GetAuditUserID(ctx context.Context) int64 {
	if info := GetAuditInfo(ctx); info != nil {
		return info.UserID
	}
	return 0
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件
// 放在 SessionAuth 之后，把店铺和员工写入 request context，
// 供 GORM 回调和请求日志使用
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := GetShop(c)
		userID := GetUserID(c)

		if shop != "" {
			ctx := WithAuditInfo(c.Request.Context(), userID, shop)
			reqLogger := logger.FromContext(ctx).With(
				zap.String("shop", shop),
				zap.Int64("user_id", userID),
			)
			c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
		}

		c.Next()
	}
}

// ==================== GORM 回调 ====================

// RegisterAuditCallbacks 注册 GORM 审计回调
// Create 时填充未设置的 CreatedBy/UpdatedBy，Update 时填充 UpdatedBy
func RegisterAuditCallbacks(db *gorm.DB) error {
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		userID := auditUserID(tx)
		if userID == 0 {
			return
		}
		setAuditField(tx, "CreatedBy", userID)
		setAuditField(tx, "UpdatedBy", userID)
	})
	if err != nil {
		return err
	}

	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		userID := auditUserID(tx)
		if userID == 0 {
			return
		}
		setAuditField(tx, "UpdatedBy", userID)
	})
}

func auditUserID(tx *gorm.DB) int64 {
	if tx.Statement.Context == nil {
		return 0
	}
	return GetAuditUserID(tx.Statement.Context)
}

// setAuditField 仅在字段为零值时写入，显式赋值优先
func setAuditField(tx *gorm.DB, fieldName string, value int64) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		if _, isZero := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue); isZero {
			_ = field.Set(tx.Statement.Context, tx.Statement.ReflectValue, value)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			rv := reflect.Indirect(tx.Statement.ReflectValue.Index(i))
			if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
				_ = field.Set(tx.Statement.Context, rv, value)
			}
		}
	}
}
