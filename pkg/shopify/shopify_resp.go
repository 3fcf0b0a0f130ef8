package shopify

import (
	"strings"
	"time"
)

// ==================== Shop ====================

// ShopInfo shop 查询返回
type ShopInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	MyshopifyDomain string `json:"myshopifyDomain"`
	URL             string `json:"url"`
}

type shopQueryResp struct {
	Shop ShopInfo `json:"shop"`
}

// ==================== Discount ====================

// DiscountCodeBasicInput discountCodeBasicCreate 入参 (仅用到的字段)
type DiscountCodeBasicInput struct {
	Title                  string
	Code                   string
	StartsAt               time.Time
	EndsAt                 *time.Time
	Percentage             float64 // 0~1
	MinimumSubtotal        string  // 金额字符串，如 "50.0"，空表示无门槛
	UsageLimit             int     // 0 表示不限
	AppliesOncePerCustomer bool
}

// UserError mutation 业务错误
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// DiscountCodeNode 创建结果
type DiscountCodeNode struct {
	ID           string `json:"id"`
	CodeDiscount struct {
		Title    string     `json:"title"`
		StartsAt time.Time  `json:"startsAt"`
		EndsAt   *time.Time `json:"endsAt"`
	} `json:"codeDiscount"`
}

// DiscountCodeResult discountCodeBasicCreate 返回
type DiscountCodeResult struct {
	CodeDiscountNode *DiscountCodeNode `json:"codeDiscountNode"`
	UserErrors       []UserError       `json:"userErrors"`
}

type discountCodeBasicCreateResp struct {
	DiscountCodeBasicCreate DiscountCodeResult `json:"discountCodeBasicCreate"`
}

const discountNodeGIDPrefix = "gid://shopify/DiscountCodeNode/"

// NumericID 去掉 gid 前缀，得到后台链接用的数字 ID
func (n *DiscountCodeNode) NumericID() string {
	return strings.TrimPrefix(n.ID, discountNodeGIDPrefix)
}
