package repository

import (
	"context"

	"gorm.io/gorm"

	"easy_promos/internal/model"
)

// DiscountCodeRepository 折扣码仓储接口
type DiscountCodeRepository interface {
	Create(ctx context.Context, code *model.DiscountCode) error
	ListByStore(ctx context.Context, storeID int64, page, pageSize int) ([]model.DiscountCode, int64, error)
}

type discountCodeRepo struct {
	db *gorm.DB
}

// NewDiscountCodeRepository 创建折扣码仓储
func NewDiscountCodeRepository(db *gorm.DB) DiscountCodeRepository {
	return &discountCodeRepo{db: db}
}

func (r *discountCodeRepo) Create(ctx context.Context, code *model.DiscountCode) error {
	return r.db.WithContext(ctx).Omit("Store").Create(code).Error
}

func (r *discountCodeRepo) ListByStore(ctx context.Context, storeID int64, page, pageSize int) ([]model.DiscountCode, int64, error) {
	var codes []model.DiscountCode
	var total int64

	query := r.db.WithContext(ctx).Model(&model.DiscountCode{}).Where("store_id = ?", storeID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Order("id DESC").
		Limit(pageSize).Offset(offset).
		Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}
