package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/pkg/logger"
	"easy_promos/pkg/metrics"
)

// 与前端约定的提示文案
const (
	MsgMissingFields          = "Missing required fields."
	MsgInvalidSelectedProduct = "Invalid selected products data."
	MsgStoreNotFound          = "Store not found."
	MsgCreatePromotionFailed  = "Failed to create promotion."
)

// ==================== 定价策略 ====================

// PricingPolicy 活动价计算与占位数据
type PricingPolicy struct {
	DiscountRate     decimal.Decimal // 0~1，活动价 = 原价 * (1 - rate)
	PlaceholderTitle string
	PlaceholderPrice decimal.Decimal
}

// DefaultPricingPolicy 未配置时的默认值
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		DiscountRate:     decimal.RequireFromString("0.10"),
		PlaceholderTitle: "Default title",
		PlaceholderPrice: decimal.NewFromInt(100),
	}
}

// PromotionalPrice 按折扣率计算活动价，保留两位小数
func (p PricingPolicy) PromotionalPrice(original decimal.Decimal) decimal.Decimal {
	return original.Mul(decimal.NewFromInt(1).Sub(p.DiscountRate)).Round(2)
}

// ==================== 入参 ====================

// CreatePromotionInput 创建活动入参，字段保持表单原始字符串
type CreatePromotionInput struct {
	Name             string
	StartDate        string
	EndDate          string
	SelectedProducts string // JSON: [{id, title?, price?, variants: [{id, price?}]}]
	Tags             []string
	UserID           int64
}

// SelectedProduct 表单中勾选的商品
type SelectedProduct struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	Price    *decimal.Decimal  `json:"price,omitempty"`
	Variants []SelectedVariant `json:"variants"`
}

// SelectedVariant 勾选商品下的变体
type SelectedVariant struct {
	ID    string           `json:"id"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// PromotionListFilter 列表筛选
type PromotionListFilter struct {
	Status   model.PromotionStatus
	Page     int
	PageSize int
}

// PromotionView 列表行，附带实时推导的状态
type PromotionView struct {
	Promotion model.Promotion
	Status    model.PromotionStatus
}

// ==================== 服务实现 ====================

// PromotionService 促销活动服务
type PromotionService struct {
	uow     *repository.PromotionUnitOfWork
	repo    repository.PromotionRepository
	pricing PricingPolicy
	metrics *metrics.Metrics
}

// NewPromotionService 创建活动服务，m 可为 nil
func NewPromotionService(
	uow *repository.PromotionUnitOfWork,
	repo repository.PromotionRepository,
	pricing PricingPolicy,
	m *metrics.Metrics,
) *PromotionService {
	return &PromotionService{
		uow:     uow,
		repo:    repo,
		pricing: pricing,
		metrics: m,
	}
}

// CreatePromotion 创建活动并关联商品变体
// 先完整校验再开事务，任一写库失败整体回滚
func (s *PromotionService) CreatePromotion(ctx context.Context, storeID int64, in CreatePromotionInput) (*model.Promotion, error) {
	start, end, products, err := validateCreateInput(in)
	if err != nil {
		return nil, err
	}

	promotion := &model.Promotion{
		AuditMixin:   model.AuditMixin{CreatedBy: in.UserID, UpdatedBy: in.UserID},
		StoreID:      storeID,
		Name:         strings.TrimSpace(in.Name),
		StartDate:    start,
		EndDate:      end,
		Tags:         normalizeTags(in.Tags),
		DiscountRate: s.pricing.DiscountRate,
	}

	var lines int
	err = s.uow.Transaction(ctx, func(tx *repository.PromotionUnitOfWork) error {
		if err := tx.Promotions.Create(ctx, promotion); err != nil {
			return &PersistenceError{Op: "create promotion", Err: err}
		}

		for _, sp := range products {
			product, err := tx.Products.FindOrCreateByShopifyID(ctx, s.newProduct(storeID, sp))
			if err != nil {
				return &PersistenceError{Op: "find or create product " + sp.ID, Err: err}
			}

			for _, sv := range sp.Variants {
				variant, err := tx.Products.FindOrCreateVariantByShopifyID(ctx, s.newVariant(product.ID, sv))
				if err != nil {
					return &PersistenceError{Op: "find or create variant " + sv.ID, Err: err}
				}

				// 变体已归属其他商品时，关联行跟随变体实际所属的商品
				productID := product.ID
				if variant.ProductID != product.ID {
					logger.FromContext(ctx).Warn("变体归属商品与提交数据不一致",
						zap.String("variant", sv.ID),
						zap.String("submitted_product", sp.ID),
						zap.Int64("owner_product_id", variant.ProductID),
					)
					productID = variant.ProductID
				}

				pp := &model.PromotionProduct{
					PromotionID:      promotion.ID,
					ProductID:        productID,
					VariantID:        variant.ID,
					OriginalPrice:    variant.Price,
					PromotionalPrice: s.pricing.PromotionalPrice(variant.Price),
				}
				if err := tx.Promotions.CreateProduct(ctx, pp); err != nil {
					return &PersistenceError{Op: "create promotion product", Err: err}
				}
				lines++
			}
		}
		return nil
	})
	if err != nil {
		logger.FromContext(ctx).Error("创建活动失败，已回滚",
			zap.Int64("store_id", storeID),
			zap.String("name", promotion.Name),
			zap.Error(err),
		)
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return nil, pe
		}
		return nil, &PersistenceError{Op: "create promotion", Err: err}
	}

	if s.metrics != nil {
		s.metrics.PromotionsCreated.Inc()
		s.metrics.PromotionProductsCreated.Add(float64(lines))
	}
	logger.FromContext(ctx).Info("活动已创建",
		zap.Int64("store_id", storeID),
		zap.Int64("promotion_id", promotion.ID),
		zap.Int("lines", lines),
	)
	return promotion, nil
}

// ListPromotions 分页查询活动，每行附带 now 时刻的状态
func (s *PromotionService) ListPromotions(ctx context.Context, storeID int64, filter PromotionListFilter, now time.Time) ([]PromotionView, int64, error) {
	list, total, err := s.repo.List(ctx, repository.PromotionFilter{
		StoreID:  storeID,
		Status:   filter.Status,
		Now:      now,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list promotions", Err: err}
	}

	views := make([]PromotionView, 0, len(list))
	for _, p := range list {
		views = append(views, PromotionView{Promotion: p, Status: p.StatusAt(now)})
	}
	return views, total, nil
}

// GetPromotion 查询本店铺的活动详情
func (s *PromotionService) GetPromotion(ctx context.Context, storeID, id int64) (*model.Promotion, error) {
	promotion, err := s.repo.GetByIDForStore(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "promotion"}
		}
		return nil, &PersistenceError{Op: "get promotion", Err: err}
	}
	return promotion, nil
}

// ==================== 私有方法 ====================

func (s *PromotionService) newProduct(storeID int64, sp SelectedProduct) *model.Product {
	title := strings.TrimSpace(sp.Title)
	if title == "" {
		title = s.pricing.PlaceholderTitle
	}
	price := s.pricing.PlaceholderPrice
	if sp.Price != nil {
		price = *sp.Price
	}
	return &model.Product{
		StoreID:          storeID,
		ShopifyID:        sp.ID,
		Title:            title,
		BasePrice:        price,
		PromotionalPrice: s.pricing.PromotionalPrice(price),
	}
}

func (s *PromotionService) newVariant(productID int64, sv SelectedVariant) *model.ProductVariant {
	price := s.pricing.PlaceholderPrice
	if sv.Price != nil {
		price = *sv.Price
	}
	return &model.ProductVariant{
		ProductID: productID,
		ShopifyID: sv.ID,
		Price:     price,
	}
}

func validateCreateInput(in CreatePromotionInput) (time.Time, time.Time, []SelectedProduct, error) {
	var zero time.Time
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.StartDate) == "" ||
		strings.TrimSpace(in.EndDate) == "" || strings.TrimSpace(in.SelectedProducts) == "" {
		return zero, zero, nil, &ValidationError{Message: MsgMissingFields}
	}

	start, err := ParseTimestamp(in.StartDate)
	if err != nil {
		return zero, zero, nil, &ValidationError{Field: "startDate", Message: "Invalid start date."}
	}
	end, err := ParseTimestamp(in.EndDate)
	if err != nil {
		return zero, zero, nil, &ValidationError{Field: "endDate", Message: "Invalid end date."}
	}
	if end.Before(start) {
		return zero, zero, nil, &ValidationError{Field: "endDate", Message: "End date must not be before start date."}
	}

	// null 顶层列表和缺失的 variants 都视为非法，显式的 [] 合法
	var decoded *[]SelectedProduct
	if err := json.Unmarshal([]byte(in.SelectedProducts), &decoded); err != nil || decoded == nil {
		return zero, zero, nil, &ValidationError{Field: "selectedProducts", Message: MsgInvalidSelectedProduct}
	}
	products := *decoded
	for _, p := range products {
		if strings.TrimSpace(p.ID) == "" || p.Variants == nil {
			return zero, zero, nil, &ValidationError{Field: "selectedProducts", Message: MsgInvalidSelectedProduct}
		}
		for _, v := range p.Variants {
			if strings.TrimSpace(v.ID) == "" {
				return zero, zero, nil, &ValidationError{Field: "selectedProducts", Message: MsgInvalidSelectedProduct}
			}
			if v.Price != nil && v.Price.IsNegative() {
				return zero, zero, nil, &ValidationError{Field: "selectedProducts", Message: MsgInvalidSelectedProduct}
			}
		}
		if p.Price != nil && p.Price.IsNegative() {
			return zero, zero, nil, &ValidationError{Field: "selectedProducts", Message: MsgInvalidSelectedProduct}
		}
	}
	return start, end, products, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp 解析 ISO-8601 时间，无时区的按 UTC 处理，结果统一为 UTC
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
