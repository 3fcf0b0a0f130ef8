package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"easy_promos/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	GetByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error)
	GetVariantByShopifyID(ctx context.Context, shopifyID string) (*model.ProductVariant, error)

	// FindOrCreate 系列：ON CONFLICT DO NOTHING 后按 shopify_id 回读
	// 并发提交同一个商品时，落败方读到胜出方的行
	FindOrCreateByShopifyID(ctx context.Context, product *model.Product) (*model.Product, error)
	FindOrCreateVariantByShopifyID(ctx context.Context, variant *model.ProductVariant) (*model.ProductVariant, error)
}

// ==================== 仓储实现 ====================

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByShopifyID(ctx context.Context, shopifyID string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("shopify_id = ?", shopifyID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetVariantByShopifyID(ctx context.Context, shopifyID string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("shopify_id = ?", shopifyID).
		First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *productRepo) FindOrCreateByShopifyID(ctx context.Context, product *model.Product) (*model.Product, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shopify_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(product).Error
	if err != nil {
		return nil, err
	}
	return r.GetByShopifyID(ctx, product.ShopifyID)
}

func (r *productRepo) FindOrCreateVariantByShopifyID(ctx context.Context, variant *model.ProductVariant) (*model.ProductVariant, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shopify_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(variant).Error
	if err != nil {
		return nil, err
	}
	return r.GetVariantByShopifyID(ctx, variant.ShopifyID)
}
