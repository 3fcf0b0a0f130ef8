package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/pkg/logger"
	"easy_promos/pkg/metrics"
	"easy_promos/pkg/shopify"
)

// StoreService 店铺服务
type StoreService struct {
	storeRepo   repository.StoreRepository
	sessionRepo repository.SessionRepository
	shopify     shopify.Client
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewStoreService 创建店铺服务
func NewStoreService(
	storeRepo repository.StoreRepository,
	sessionRepo repository.SessionRepository,
	client shopify.Client,
	m *metrics.Metrics,
) *StoreService {
	return &StoreService{
		storeRepo:   storeRepo,
		sessionRepo: sessionRepo,
		shopify:     client,
		metrics:     m,
		now:         time.Now,
	}
}

// ResolveStore 按 myshopify 域名查本地店铺
func (s *StoreService) ResolveStore(ctx context.Context, shopDomain string) (*model.Store, error) {
	store, err := s.storeRepo.GetByDomain(ctx, shopDomain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "store"}
		}
		return nil, &PersistenceError{Op: "get store", Err: err}
	}
	return store, nil
}

// OfflineSession 取店铺的离线会话
func (s *StoreService) OfflineSession(ctx context.Context, shopDomain string) (*model.Session, error) {
	session, err := s.sessionRepo.GetOfflineByShop(ctx, shopDomain)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "session"}
		}
		return nil, &PersistenceError{Op: "get session", Err: err}
	}
	return session, nil
}

// SyncStore 从 Shopify 拉取店铺资料并按 ShopifyID upsert
func (s *StoreService) SyncStore(ctx context.Context, shopDomain string) (*model.Store, error) {
	store, err := s.syncStore(ctx, shopDomain)
	if s.metrics != nil {
		result := "success"
		if err != nil {
			result = "failure"
		}
		s.metrics.StoreSyncs.WithLabelValues(result).Inc()
	}
	return store, err
}

func (s *StoreService) syncStore(ctx context.Context, shopDomain string) (*model.Store, error) {
	session, err := s.OfflineSession(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	info, err := s.shopify.GetShop(ctx, shopDomain, session.AccessToken)
	if err != nil {
		return nil, &UpstreamError{Op: "query shop", Err: err}
	}

	domain := info.MyshopifyDomain
	if domain == "" {
		domain = shopDomain
	}
	syncedAt := s.now().UTC()
	store, err := s.storeRepo.Upsert(ctx, &model.Store{
		ShopifyID: info.ID,
		Domain:    domain,
		Name:      info.Name,
		Email:     info.Email,
		URL:       info.URL,
		SyncedAt:  &syncedAt,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "upsert store", Err: err}
	}

	logger.FromContext(ctx).Info("店铺已同步",
		zap.String("shop", shopDomain),
		zap.Int64("store_id", store.ID),
	)
	return store, nil
}

// ListSyncableShops 有离线会话的店铺域名
func (s *StoreService) ListSyncableShops(ctx context.Context) ([]string, error) {
	shops, err := s.sessionRepo.ListOfflineShops(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list sessions", Err: err}
	}
	return shops, nil
}
