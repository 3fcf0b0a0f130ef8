package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier 把预置的 data JSON 解到 resp 中
type fakeQuerier struct {
	data string
	err  error

	lastQuery string
	lastVars  interface{}
}

func (f *fakeQuerier) Query(ctx context.Context, q string, vars, resp interface{}) error {
	f.lastQuery = q
	f.lastVars = vars
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.data), resp)
}

func newFakeClient(q *fakeQuerier) Client {
	return NewClientWithFactory(func(shopDomain, accessToken string) (Querier, error) {
		return q, nil
	})
}

func TestClient_GetShop(t *testing.T) {
	q := &fakeQuerier{data: `{"shop":{"id":"gid://shopify/Shop/1","name":"Demo","email":"a@b.c","myshopifyDomain":"demo.myshopify.com","url":"https://demo.myshopify.com"}}`}

	shop, err := newFakeClient(q).GetShop(context.Background(), "demo.myshopify.com", "token")
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Shop/1", shop.ID)
	assert.Equal(t, "demo.myshopify.com", shop.MyshopifyDomain)
	assert.Contains(t, q.lastQuery, "myshopifyDomain")
}

func TestClient_GetShop_Errors(t *testing.T) {
	t.Run("请求失败", func(t *testing.T) {
		cause := errors.New("502 bad gateway")
		_, err := newFakeClient(&fakeQuerier{err: cause}).GetShop(context.Background(), "demo.myshopify.com", "token")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("空结果", func(t *testing.T) {
		_, err := newFakeClient(&fakeQuerier{data: `{"shop":{}}`}).GetShop(context.Background(), "demo.myshopify.com", "token")
		assert.Error(t, err)
	})

	t.Run("创建客户端失败", func(t *testing.T) {
		c := NewClientWithFactory(func(string, string) (Querier, error) {
			return nil, errors.New("bad shop")
		})
		_, err := c.GetShop(context.Background(), "", "")
		assert.EqualError(t, err, "bad shop")
	})
}

func TestClient_CreateBasicDiscountCode(t *testing.T) {
	q := &fakeQuerier{data: `{"discountCodeBasicCreate":{"codeDiscountNode":{"id":"gid://shopify/DiscountCodeNode/555","codeDiscount":{"title":"10% off selected items","startsAt":"2025-06-15T12:00:00Z","endsAt":null}},"userErrors":[]}}`}
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	result, err := newFakeClient(q).CreateBasicDiscountCode(context.Background(), "demo.myshopify.com", "token", DiscountCodeBasicInput{
		Title:                  "10% off selected items",
		Code:                   "DISCOUNT-1-1",
		StartsAt:               start,
		EndsAt:                 &end,
		Percentage:             0.1,
		MinimumSubtotal:        "50.0",
		UsageLimit:             100,
		AppliesOncePerCustomer: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.CodeDiscountNode)
	assert.Equal(t, "555", result.CodeDiscountNode.NumericID())
	assert.Equal(t, "10% off selected items", result.CodeDiscountNode.CodeDiscount.Title)

	vars := q.lastVars.(map[string]interface{})
	basic := vars["basicCodeDiscount"].(map[string]interface{})
	assert.Equal(t, "DISCOUNT-1-1", basic["code"])
	assert.Equal(t, "2025-06-15T12:00:00Z", basic["startsAt"])
	assert.Equal(t, "2026-06-15T12:00:00Z", basic["endsAt"])
	assert.Equal(t, 100, basic["usageLimit"])
	assert.Equal(t, true, basic["appliesOncePerCustomer"])
	assert.Equal(t, map[string]interface{}{"all": true}, basic["customerSelection"])
	assert.Equal(t, map[string]interface{}{
		"subtotal": map[string]interface{}{"greaterThanOrEqualToSubtotal": "50.0"},
	}, basic["minimumRequirement"])

	gets := basic["customerGets"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"percentage": 0.1}, gets["value"])
	assert.Equal(t, map[string]interface{}{"all": true}, gets["items"])
}

func TestClient_CreateBasicDiscountCode_UserErrors(t *testing.T) {
	q := &fakeQuerier{data: `{"discountCodeBasicCreate":{"codeDiscountNode":null,"userErrors":[{"field":["basicCodeDiscount","code"],"message":"Code must be unique"}]}}`}

	result, err := newFakeClient(q).CreateBasicDiscountCode(context.Background(), "demo.myshopify.com", "token", DiscountCodeBasicInput{
		Code:     "DUP",
		StartsAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrUserErrors)
	assert.Contains(t, err.Error(), "Code must be unique")
	require.NotNil(t, result)
	require.Len(t, result.UserErrors, 1)
	assert.Equal(t, []string{"basicCodeDiscount", "code"}, result.UserErrors[0].Field)
}

func TestBuildDiscountVariables_OptionalFields(t *testing.T) {
	vars := buildDiscountVariables(DiscountCodeBasicInput{Code: "X", StartsAt: time.Now()})
	basic := vars["basicCodeDiscount"].(map[string]interface{})

	assert.NotContains(t, basic, "endsAt")
	assert.NotContains(t, basic, "minimumRequirement")
	assert.NotContains(t, basic, "usageLimit")
}

func TestDiscountCodeNode_NumericID(t *testing.T) {
	assert.Equal(t, "123", (&DiscountCodeNode{ID: "gid://shopify/DiscountCodeNode/123"}).NumericID())
	assert.Equal(t, "raw", (&DiscountCodeNode{ID: "raw"}).NumericID())
}
