package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DiscountCode 通过 discountCodeBasicCreate 生成的折扣码
type DiscountCode struct {
	BaseModel
	StoreID   int64  `gorm:"index;not null" json:"store_id"`
	Store     *Store `gorm:"foreignKey:StoreID" json:"-"`
	ShopifyID string `gorm:"size:100;uniqueIndex;not null" json:"shopify_id"` // 去掉 gid 前缀后的数字 ID
	Code      string `gorm:"size:100;uniqueIndex;not null" json:"code"`

	Title      string          `gorm:"size:255" json:"title"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,4);default:0" json:"percentage"`
	StartsAt   time.Time       `json:"starts_at"`
	EndsAt     *time.Time      `json:"ends_at"`

	Raw datatypes.JSON `gorm:"type:jsonb" json:"-"` // mutation 原始返回
}

func (DiscountCode) TableName() string {
	return "discount_codes"
}
