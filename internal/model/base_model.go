package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditMixin 审计字段，由 middleware.RegisterAuditCallbacks 自动填充
// 值为 Shopify 后台员工 ID (session token 的 sub)
type AuditMixin struct {
	CreatedBy int64 `gorm:"index;default:0" json:"created_by"`
	UpdatedBy int64 `gorm:"default:0" json:"updated_by"`
}
