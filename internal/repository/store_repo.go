package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"easy_promos/internal/model"
)

// ==================== 接口定义 ====================

// StoreRepository 店铺仓储接口
type StoreRepository interface {
	GetByDomain(ctx context.Context, domain string) (*model.Store, error)
	GetByShopifyID(ctx context.Context, shopifyID string) (*model.Store, error)

	// Upsert 按 shopify_id 插入或更新，返回落库后的记录
	Upsert(ctx context.Context, store *model.Store) (*model.Store, error)
}

// SessionRepository Shopify 会话仓储接口 (只读)
type SessionRepository interface {
	GetOfflineByShop(ctx context.Context, shop string) (*model.Session, error)
	ListOfflineShops(ctx context.Context) ([]string, error)
}

// ==================== Store 仓储实现 ====================

type storeRepo struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) GetByDomain(ctx context.Context, domain string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) GetByShopifyID(ctx context.Context, shopifyID string) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).Where("shopify_id = ?", shopifyID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) Upsert(ctx context.Context, store *model.Store) (*model.Store, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shopify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "domain", "url", "synced_at", "updated_at",
		}),
	}).Create(store).Error
	if err != nil {
		return nil, err
	}
	// 冲突更新时不一定回填 ID，重新读一次
	return r.GetByShopifyID(ctx, store.ShopifyID)
}

// ==================== Session 仓储实现 ====================

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话仓储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) GetOfflineByShop(ctx context.Context, shop string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).
		Where("shop = ? AND is_online = ?", shop, false).
		Where("access_token <> ''").
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListOfflineShops(ctx context.Context) ([]string, error) {
	var shops []string
	err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("is_online = ? AND access_token <> ''", false).
		Distinct("shop").
		Order("shop ASC").
		Pluck("shop", &shops).Error
	return shops, err
}
