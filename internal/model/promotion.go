package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Promotion 促销活动
// 创建后不可修改，状态由起止时间实时推导，不落库
type Promotion struct {
	BaseModel
	AuditMixin
	StoreID int64  `gorm:"index:idx_store_start;not null" json:"store_id"`
	Store   *Store `gorm:"foreignKey:StoreID" json:"-"`

	Name      string    `gorm:"size:255;not null" json:"name"`
	StartDate time.Time `gorm:"index:idx_store_start;not null" json:"start_date"`
	EndDate   time.Time `gorm:"index;not null" json:"end_date"`

	Tags         pq.StringArray  `gorm:"type:text[]" json:"tags"`
	DiscountRate decimal.Decimal `gorm:"type:decimal(5,4);default:0" json:"discount_rate"` // 创建时生效的折扣率

	Products []PromotionProduct `gorm:"foreignKey:PromotionID" json:"products,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// StatusAt 按给定时间推导活动状态
func (p *Promotion) StatusAt(now time.Time) PromotionStatus {
	return ClassifyPromotion(p.StartDate, p.EndDate, now)
}

// PromotionProduct 活动-商品-变体关联
// 记录关联时的原价和活动价
type PromotionProduct struct {
	BaseModel
	PromotionID int64           `gorm:"index;not null" json:"promotion_id"`
	Promotion   *Promotion      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ProductID   int64           `gorm:"index;not null" json:"product_id"`
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	VariantID   int64           `gorm:"index;not null" json:"variant_id"`
	Variant     *ProductVariant `gorm:"foreignKey:VariantID" json:"variant,omitempty"`

	OriginalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"original_price"`
	PromotionalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"promotional_price"`
}

func (PromotionProduct) TableName() string {
	return "promotion_products"
}
