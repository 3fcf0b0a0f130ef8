package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"easy_promos/internal/model"
)

// ================== 通用 ==================

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResp 分页数据
type PageResp struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// ================== Promotion DTO ==================

// CreatePromotionReq 创建活动表单
// 与前端表单字段保持一致，校验在 service 层完成
type CreatePromotionReq struct {
	Name             string `form:"name" json:"name"`
	StartDate        string `form:"startDate" json:"startDate"`
	EndDate          string `form:"endDate" json:"endDate"`
	SelectedProducts string `form:"selectedProducts" json:"selectedProducts"`
	Tags             string `form:"tags" json:"tags"` // 逗号分隔
}

// TagList 拆分逗号分隔的标签
func (r *CreatePromotionReq) TagList() []string {
	if strings.TrimSpace(r.Tags) == "" {
		return nil
	}
	return strings.Split(r.Tags, ",")
}

// CreatePromotionResp 创建结果
type CreatePromotionResp struct {
	ID       int64  `json:"id"`
	Redirect string `json:"redirect"`
}

// PromotionListReq 活动列表请求
type PromotionListReq struct {
	Page     int    `form:"page,default=1" binding:"min=1,max=10000"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=scheduled ongoing completed"`
}

// PromotionResp 活动列表行
type PromotionResp struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	Tags         []string          `json:"tags"`
	DiscountRate decimal.Decimal   `json:"discount_rate"`
	Status       string            `json:"status"`
	StatusLabel  string            `json:"status_label"`
	Badge        model.StatusBadge `json:"badge"`
	CreatedBy    int64             `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
}

// PromotionLineResp 活动商品行
type PromotionLineResp struct {
	ProductID        int64           `json:"product_id"`
	ProductShopifyID string          `json:"product_shopify_id"`
	ProductTitle     string          `json:"product_title"`
	VariantID        int64           `json:"variant_id"`
	VariantShopifyID string          `json:"variant_shopify_id"`
	OriginalPrice    decimal.Decimal `json:"original_price"`
	PromotionalPrice decimal.Decimal `json:"promotional_price"`
}

// PromotionDetailResp 活动详情
type PromotionDetailResp struct {
	PromotionResp
	Products []PromotionLineResp `json:"products"`
}

// ToPromotionResp 模型转列表行
func ToPromotionResp(p *model.Promotion, status model.PromotionStatus) PromotionResp {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PromotionResp{
		ID:           p.ID,
		Name:         p.Name,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Tags:         tags,
		DiscountRate: p.DiscountRate,
		Status:       string(status),
		StatusLabel:  status.Label(),
		Badge:        status.Badge(),
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
	}
}

// ToPromotionDetailResp 模型转详情
func ToPromotionDetailResp(p *model.Promotion, now time.Time) PromotionDetailResp {
	resp := PromotionDetailResp{
		PromotionResp: ToPromotionResp(p, p.StatusAt(now)),
		Products:      make([]PromotionLineResp, 0, len(p.Products)),
	}
	for _, pp := range p.Products {
		line := PromotionLineResp{
			ProductID:        pp.ProductID,
			VariantID:        pp.VariantID,
			OriginalPrice:    pp.OriginalPrice,
			PromotionalPrice: pp.PromotionalPrice,
		}
		if pp.Product != nil {
			line.ProductShopifyID = pp.Product.ShopifyID
			line.ProductTitle = pp.Product.Title
		}
		if pp.Variant != nil {
			line.VariantShopifyID = pp.Variant.ShopifyID
		}
		resp.Products = append(resp.Products, line)
	}
	return resp
}
