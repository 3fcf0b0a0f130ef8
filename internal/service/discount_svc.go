package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/pkg/logger"
	"easy_promos/pkg/metrics"
	"easy_promos/pkg/shopify"
)

// DiscountListPageSize 折扣码列表每页条数
const DiscountListPageSize = 10

// DiscountSettings 折扣码生成参数
type DiscountSettings struct {
	Rate            decimal.Decimal
	MinimumSubtotal string
	UsageLimit      int
	ValidDays       int
}

// DiscountService 折扣码服务
type DiscountService struct {
	repo     repository.DiscountCodeRepository
	stores   *StoreService
	shopify  shopify.Client
	settings DiscountSettings
	metrics  *metrics.Metrics

	now     func() time.Time
	newCode func(now time.Time) string
}

// NewDiscountService 创建折扣码服务
func NewDiscountService(
	repo repository.DiscountCodeRepository,
	stores *StoreService,
	client shopify.Client,
	settings DiscountSettings,
	m *metrics.Metrics,
) *DiscountService {
	return &DiscountService{
		repo:     repo,
		stores:   stores,
		shopify:  client,
		settings: settings,
		metrics:  m,
		now:      time.Now,
		newCode:  uniqueDiscountCode,
	}
}

// uniqueDiscountCode DISCOUNT-<毫秒时间戳>-<0~999>
func uniqueDiscountCode(now time.Time) string {
	return fmt.Sprintf("DISCOUNT-%d-%d", now.UnixMilli(), rand.IntN(1000))
}

// GenerateDiscountCode 在 Shopify 创建折扣码，同步店铺后落库
func (s *DiscountService) GenerateDiscountCode(ctx context.Context, shopDomain string) (*model.DiscountCode, error) {
	session, err := s.stores.OfflineSession(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	code := s.newCode(now)
	endsAt := now.AddDate(0, 0, s.settings.ValidDays)
	rate, _ := s.settings.Rate.Float64()

	input := shopify.DiscountCodeBasicInput{
		Title:                  fmt.Sprintf("%s%% off selected items", s.settings.Rate.Shift(2).String()),
		Code:                   code,
		StartsAt:               now,
		EndsAt:                 &endsAt,
		Percentage:             rate,
		MinimumSubtotal:        s.settings.MinimumSubtotal,
		UsageLimit:             s.settings.UsageLimit,
		AppliesOncePerCustomer: true,
	}

	result, err := s.shopify.CreateBasicDiscountCode(ctx, shopDomain, session.AccessToken, input)
	if err != nil {
		if errors.Is(err, shopify.ErrUserErrors) && result != nil && len(result.UserErrors) > 0 {
			ue := result.UserErrors[0]
			field := ""
			if len(ue.Field) > 0 {
				field = ue.Field[len(ue.Field)-1]
			}
			return nil, &ValidationError{Field: field, Message: ue.Message}
		}
		return nil, &UpstreamError{Op: "discountCodeBasicCreate", Err: err}
	}

	store, err := s.stores.SyncStore(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, &PersistenceError{Op: "encode discount payload", Err: err}
	}

	node := result.CodeDiscountNode
	discount := &model.DiscountCode{
		StoreID:    store.ID,
		ShopifyID:  node.NumericID(),
		Code:       code,
		Title:      input.Title,
		Percentage: s.settings.Rate,
		StartsAt:   now,
		EndsAt:     &endsAt,
		Raw:        datatypes.JSON(raw),
	}
	if node.CodeDiscount.Title != "" {
		discount.Title = node.CodeDiscount.Title
	}
	if !node.CodeDiscount.StartsAt.IsZero() {
		discount.StartsAt = node.CodeDiscount.StartsAt.UTC()
	}
	if node.CodeDiscount.EndsAt != nil {
		e := node.CodeDiscount.EndsAt.UTC()
		discount.EndsAt = &e
	}

	if err := s.repo.Create(ctx, discount); err != nil {
		logger.FromContext(ctx).Error("折扣码落库失败",
			zap.String("shop", shopDomain),
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, &PersistenceError{Op: "create discount code", Err: err}
	}

	if s.metrics != nil {
		s.metrics.DiscountCodesCreated.Inc()
	}
	return discount, nil
}

// ListDiscountCodes 按创建时间倒序分页
func (s *DiscountService) ListDiscountCodes(ctx context.Context, storeID int64, page int) ([]model.DiscountCode, int64, error) {
	if page <= 0 {
		page = 1
	}
	codes, total, err := s.repo.ListByStore(ctx, storeID, page, DiscountListPageSize)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list discount codes", Err: err}
	}
	return codes, total, nil
}
