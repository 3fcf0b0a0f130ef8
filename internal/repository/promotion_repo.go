package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"easy_promos/internal/model"
)

// ==================== 仓储接口 ====================

// PromotionRepository 促销活动仓储接口
type PromotionRepository interface {
	Create(ctx context.Context, promotion *model.Promotion) error
	CreateProduct(ctx context.Context, pp *model.PromotionProduct) error

	GetByIDForStore(ctx context.Context, storeID, id int64) (*model.Promotion, error)
	List(ctx context.Context, filter PromotionFilter) ([]model.Promotion, int64, error)
}

// ==================== 过滤条件 ====================

// PromotionFilter 活动过滤条件
type PromotionFilter struct {
	StoreID  int64
	Status   model.PromotionStatus // 空表示不筛选
	Now      time.Time             // 状态筛选的参照时间
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type promotionRepo struct {
	db *gorm.DB
}

// NewPromotionRepository 创建活动仓储
func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepo{db: db}
}

func (r *promotionRepo) Create(ctx context.Context, promotion *model.Promotion) error {
	return r.db.WithContext(ctx).Omit("Products").Create(promotion).Error
}

func (r *promotionRepo) CreateProduct(ctx context.Context, pp *model.PromotionProduct) error {
	return r.db.WithContext(ctx).Omit("Promotion", "Product", "Variant").Create(pp).Error
}

func (r *promotionRepo) GetByIDForStore(ctx context.Context, storeID, id int64) (*model.Promotion, error) {
	var promotion model.Promotion
	if err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("promotion_products.id ASC")
		}).
		Preload("Products.Product").
		Preload("Products.Variant").
		Where("store_id = ?", storeID).
		First(&promotion, id).Error; err != nil {
		return nil, err
	}
	return &promotion, nil
}

func (r *promotionRepo) List(ctx context.Context, filter PromotionFilter) ([]model.Promotion, int64, error) {
	var promotions []model.Promotion
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Promotion{}).Where("store_id = ?", filter.StoreID)

	// 状态不落库，按时间区间换算成条件，保证分页与总数一致
	if filter.Status != "" {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		now = now.UTC()
		switch filter.Status {
		case model.PromotionStatusScheduled:
			query = query.Where("start_date > ?", now)
		case model.PromotionStatusOngoing:
			query = query.Where("start_date <= ? AND end_date >= ?", now, now)
		case model.PromotionStatusCompleted:
			query = query.Where("end_date < ?", now)
		default:
			return nil, 0, fmt.Errorf("unknown promotion status %q", filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("start_date DESC").Order("id DESC").
		Limit(filter.PageSize).Offset(offset).
		Find(&promotions).Error; err != nil {
		return nil, 0, err
	}

	return promotions, total, nil
}

// ==================== 事务支持 ====================

// PromotionUnitOfWork 创建活动的工作单元（事务）
type PromotionUnitOfWork struct {
	db         *gorm.DB
	Promotions PromotionRepository
	Products   ProductRepository
}

// NewPromotionUnitOfWork 创建工作单元
func NewPromotionUnitOfWork(db *gorm.DB) *PromotionUnitOfWork {
	return &PromotionUnitOfWork{
		db:         db,
		Promotions: NewPromotionRepository(db),
		Products:   NewProductRepository(db),
	}
}

// Transaction 执行事务，fn 返回错误时整体回滚
func (u *PromotionUnitOfWork) Transaction(ctx context.Context, fn func(uow *PromotionUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &PromotionUnitOfWork{
			db:         tx,
			Promotions: NewPromotionRepository(tx),
			Products:   NewProductRepository(tx),
		}
		return fn(txUow)
	})
}
