package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ==================== 接口定义 ====================

// Client Shopify Admin GraphQL 客户端
type Client interface {
	GetShop(ctx context.Context, shopDomain, accessToken string) (*ShopInfo, error)
	CreateBasicDiscountCode(ctx context.Context, shopDomain, accessToken string, input DiscountCodeBasicInput) (*DiscountCodeResult, error)
}

// Querier 执行一次 GraphQL 请求，resp 接收 data 字段
type Querier interface {
	Query(ctx context.Context, q string, vars, resp interface{}) error
}

// QuerierFactory 为指定店铺创建 Querier
type QuerierFactory func(shopDomain, accessToken string) (Querier, error)

// ErrUserErrors mutation 返回 userErrors
var ErrUserErrors = errors.New("shopify user errors")

// ==================== 实现 ====================

type client struct {
	newQuerier QuerierFactory
}

// NewClient 基于 go-shopify 创建客户端
func NewClient(apiKey, apiSecret, apiVersion string) Client {
	app := goshopify.App{
		ApiKey:    apiKey,
		ApiSecret: apiSecret,
	}
	return NewClientWithFactory(func(shopDomain, accessToken string) (Querier, error) {
		c, err := goshopify.NewClient(app, shopDomain, accessToken, goshopify.WithVersion(apiVersion))
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		return c.GraphQL, nil
	})
}

// NewClientWithFactory 自定义 Querier 来源，测试用
func NewClientWithFactory(factory QuerierFactory) Client {
	return &client{newQuerier: factory}
}

const shopQuery = `
query {
  shop {
    id
    name
    email
    myshopifyDomain
    url
  }
}`

func (c *client) GetShop(ctx context.Context, shopDomain, accessToken string) (*ShopInfo, error) {
	q, err := c.newQuerier(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var resp shopQueryResp
	if err := q.Query(ctx, shopQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to query shop: %w", err)
	}
	if resp.Shop.ID == "" {
		return nil, errors.New("shop query returned no shop")
	}
	return &resp.Shop, nil
}

const discountCodeBasicCreateMutation = `
mutation CreateDiscountCode($basicCodeDiscount: DiscountCodeBasicInput!) {
  discountCodeBasicCreate(basicCodeDiscount: $basicCodeDiscount) {
    codeDiscountNode {
      id
      codeDiscount {
        ... on DiscountCodeBasic {
          title
          startsAt
          endsAt
        }
      }
    }
    userErrors {
      field
      message
    }
  }
}`

func (c *client) CreateBasicDiscountCode(ctx context.Context, shopDomain, accessToken string, input DiscountCodeBasicInput) (*DiscountCodeResult, error) {
	q, err := c.newQuerier(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var resp discountCodeBasicCreateResp
	if err := q.Query(ctx, discountCodeBasicCreateMutation, buildDiscountVariables(input), &resp); err != nil {
		return nil, fmt.Errorf("failed to create discount code: %w", err)
	}

	result := &resp.DiscountCodeBasicCreate
	if len(result.UserErrors) > 0 {
		msgs := make([]string, 0, len(result.UserErrors))
		for _, ue := range result.UserErrors {
			msgs = append(msgs, ue.Message)
		}
		return result, fmt.Errorf("%w: %s", ErrUserErrors, strings.Join(msgs, "; "))
	}
	if result.CodeDiscountNode == nil {
		return result, errors.New("discountCodeBasicCreate returned no node")
	}
	return result, nil
}

func buildDiscountVariables(in DiscountCodeBasicInput) map[string]interface{} {
	basic := map[string]interface{}{
		"title":                  in.Title,
		"code":                   in.Code,
		"startsAt":               in.StartsAt.UTC().Format(time.RFC3339),
		"customerSelection":      map[string]interface{}{"all": true},
		"appliesOncePerCustomer": in.AppliesOncePerCustomer,
		"customerGets": map[string]interface{}{
			"value": map[string]interface{}{"percentage": in.Percentage},
			"items": map[string]interface{}{"all": true},
		},
	}
	if in.EndsAt != nil {
		basic["endsAt"] = in.EndsAt.UTC().Format(time.RFC3339)
	}
	if in.MinimumSubtotal != "" {
		basic["minimumRequirement"] = map[string]interface{}{
			"subtotal": map[string]interface{}{"greaterThanOrEqualToSubtotal": in.MinimumSubtotal},
		}
	}
	if in.UsageLimit > 0 {
		basic["usageLimit"] = in.UsageLimit
	}
	return map[string]interface{}{"basicCodeDiscount": basic}
}
