package model

import (
	"github.com/shopspring/decimal"
)

// Product Shopify 商品的本地镜像
// ShopifyID 全局唯一，重复提交复用同一行
type Product struct {
	BaseModel
	StoreID   int64  `gorm:"index;not null" json:"store_id"`
	Store     *Store `gorm:"foreignKey:StoreID" json:"-"`
	ShopifyID string `gorm:"size:100;uniqueIndex;not null" json:"shopify_id"` // gid://shopify/Product/xxx

	Title            string          `gorm:"size:255" json:"title"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"base_price"`
	PromotionalPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"promotional_price"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductVariant struct {
	BaseModel
	ProductID int64    `gorm:"index;not null" json:"product_id"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ShopifyID string   `gorm:"size:100;uniqueIndex;not null" json:"shopify_id"` // gid://shopify/ProductVariant/xxx

	Price decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"price"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
