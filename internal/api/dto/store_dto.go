package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"easy_promos/internal/model"
)

// ================== Store && Discount DTO ==================

// StoreResp 店铺响应
type StoreResp struct {
	ID        int64      `json:"id"`
	ShopifyID string     `json:"shopify_id"`
	Domain    string     `json:"domain"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	URL       string     `json:"url"`
	SyncedAt  *time.Time `json:"synced_at"`
}

// ToStoreResp 模型转响应
func ToStoreResp(s *model.Store) StoreResp {
	return StoreResp{
		ID:        s.ID,
		ShopifyID: s.ShopifyID,
		Domain:    s.Domain,
		Name:      s.Name,
		Email:     s.Email,
		URL:       s.URL,
		SyncedAt:  s.SyncedAt,
	}
}

// DiscountCodeListReq 折扣码列表请求
type DiscountCodeListReq struct {
	Page int `form:"page,default=1" binding:"min=1,max=10000"`
}

// DiscountCodeResp 折扣码响应
type DiscountCodeResp struct {
	ID         int64           `json:"id"`
	ShopifyID  string          `json:"shopify_id"`
	Code       string          `json:"code"`
	Title      string          `json:"title"`
	Percentage decimal.Decimal `json:"percentage"`
	StartsAt   time.Time       `json:"starts_at"`
	EndsAt     *time.Time      `json:"ends_at"`
	AdminURL   string          `json:"admin_url"` // 后台折扣详情页
	CreatedAt  time.Time       `json:"created_at"`
}

// ToDiscountCodeResp 模型转响应
func ToDiscountCodeResp(d *model.DiscountCode) DiscountCodeResp {
	return DiscountCodeResp{
		ID:         d.ID,
		ShopifyID:  d.ShopifyID,
		Code:       d.Code,
		Title:      d.Title,
		Percentage: d.Percentage,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
		AdminURL:   "shopify:admin/discounts/" + d.ShopifyID,
		CreatedAt:  d.CreatedAt,
	}
}
