package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"easy_promos/internal/controller"
	"easy_promos/internal/middleware"
	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/internal/service"
	"easy_promos/pkg/metrics"
	"easy_promos/pkg/shopify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== Mock 实现 ====================

type fakeShopify struct {
	shopErr error
}

func (f *fakeShopify) GetShop(ctx context.Context, shop, token string) (*shopify.ShopInfo, error) {
	if f.shopErr != nil {
		return nil, f.shopErr
	}
	return &shopify.ShopInfo{
		ID:              "gid://shopify/Shop/1",
		Name:            "Demo Store",
		Email:           "owner@example.com",
		MyshopifyDomain: shop,
		URL:             "https://" + shop,
	}, nil
}

func (f *fakeShopify) CreateBasicDiscountCode(ctx context.Context, shop, token string, in shopify.DiscountCodeBasicInput) (*shopify.DiscountCodeResult, error) {
	node := &shopify.DiscountCodeNode{ID: "gid://shopify/DiscountCodeNode/987"}
	node.CodeDiscount.Title = in.Title
	node.CodeDiscount.StartsAt = in.StartsAt
	node.CodeDiscount.EndsAt = in.EndsAt
	return &shopify.DiscountCodeResult{CodeDiscountNode: node}, nil
}

// ==================== 测试环境 ====================

const (
	testShop   = "demo.myshopify.com"
	otherShop  = "other.myshopify.com"
	testUserID = int64(42)
)

var testSession = middleware.SessionConfig{APIKey: "test-key", APISecret: "test-secret"}

type testEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	metrics *metrics.Metrics
	store   *model.Store
}

func setupTestEnv(t *testing.T, client shopify.Client) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Store{}, &model.Session{},
		&model.Product{}, &model.ProductVariant{},
		&model.Promotion{}, &model.PromotionProduct{},
		&model.DiscountCode{},
	))
	require.NoError(t, middleware.RegisterAuditCallbacks(db))

	store := &model.Store{ShopifyID: "gid://shopify/Shop/1", Domain: testShop, Name: "Demo Store"}
	require.NoError(t, db.Create(store).Error)
	require.NoError(t, db.Create(&model.Session{
		ID:          "offline_" + testShop,
		Shop:        testShop,
		AccessToken: "shpat_test",
	}).Error)

	m := metrics.New("test")
	stores := service.NewStoreService(repository.NewStoreRepository(db), repository.NewSessionRepository(db), client, m)
	promotions := service.NewPromotionService(
		repository.NewPromotionUnitOfWork(db),
		repository.NewPromotionRepository(db),
		service.DefaultPricingPolicy(),
		m,
	)
	discounts := service.NewDiscountService(
		repository.NewDiscountCodeRepository(db), stores, client,
		service.DiscountSettings{
			Rate:            decimal.RequireFromString("0.10"),
			MinimumSubtotal: "50.0",
			UsageLimit:      100,
			ValidDays:       365,
		},
		m,
	)

	r := SetupRouter(&Controllers{
		Promotion: controller.NewPromotionController(promotions, stores),
		Store:     controller.NewStoreController(stores),
		Discount:  controller.NewDiscountController(discounts, stores),
	}, Options{
		Session:     testSession,
		Metrics:     m,
		Limiter:     middleware.NewSyncRateLimiter(),
		Environment: "test",
	})

	return &testEnv{db: db, router: r, metrics: m, store: store}
}

func bearer(t *testing.T, shop string) string {
	token, err := middleware.SignSessionToken(testSession, shop, testUserID, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, req *http.Request, shop string) *httptest.ResponseRecorder {
	if shop != "" {
		req.Header.Set("Authorization", bearer(t, shop))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func summerSaleForm() url.Values {
	return url.Values{
		"name":             {"Summer Sale"},
		"startDate":        {"2025-07-01T00:00:00Z"},
		"endDate":          {"2025-07-31T23:59:59Z"},
		"selectedProducts": {`[{"id":"gid://shopify/Product/1","variants":[{"id":"gid://shopify/ProductVariant/11"},{"id":"gid://shopify/ProductVariant/12"}]}]`},
		"tags":             {"summer, sale"},
	}
}

// ==================== 基础路由 ====================

func TestHealthz(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode(t, w).Code)
}

func TestAPI_RequiresSessionToken(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/promotions", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 401, decode(t, w).Code)
}

// ==================== 促销活动 ====================

func TestCreatePromotion_RedirectsToIndex(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, postForm("/api/promotions", summerSaleForm()), testShop)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, controller.IndexPath, w.Header().Get("Location"))

	var promotion model.Promotion
	require.NoError(t, env.db.First(&promotion).Error)
	assert.Equal(t, "Summer Sale", promotion.Name)
	assert.Equal(t, env.store.ID, promotion.StoreID)
	assert.Equal(t, testUserID, promotion.CreatedBy)
	assert.ElementsMatch(t, []string{"summer", "sale"}, []string(promotion.Tags))

	var lines int64
	require.NoError(t, env.db.Model(&model.PromotionProduct{}).Count(&lines).Error)
	assert.Equal(t, int64(2), lines)
}

func TestCreatePromotion_JSONAccept(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	req := postForm("/api/promotions", summerSaleForm())
	req.Header.Set("Accept", "application/json")
	w := env.do(t, req, testShop)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		ID       int64  `json:"id"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.NotZero(t, data.ID)
	assert.Equal(t, controller.IndexPath, data.Redirect)
}

func TestCreatePromotion_Errors(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	tests := []struct {
		name    string
		shop    string
		mutate  func(v url.Values)
		code    int
		message string
	}{
		{
			name:    "缺少名称",
			shop:    testShop,
			mutate:  func(v url.Values) { v.Del("name") },
			code:    http.StatusBadRequest,
			message: service.MsgMissingFields,
		},
		{
			name:    "商品数据非法",
			shop:    testShop,
			mutate:  func(v url.Values) { v.Set("selectedProducts", "{not json") },
			code:    http.StatusBadRequest,
			message: service.MsgInvalidSelectedProduct,
		},
		{
			name:    "店铺不存在",
			shop:    otherShop,
			mutate:  func(v url.Values) {},
			code:    http.StatusNotFound,
			message: service.MsgStoreNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := summerSaleForm()
			tt.mutate(form)

			w := env.do(t, postForm("/api/promotions", form), tt.shop)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, decode(t, w).Message)
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&model.Promotion{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListPromotions_StatusFilter(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})
	now := time.Now().UTC()

	seed := []model.Promotion{
		{StoreID: env.store.ID, Name: "past", StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, -1, 0), DiscountRate: decimal.RequireFromString("0.10")},
		{StoreID: env.store.ID, Name: "live", StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 1), DiscountRate: decimal.RequireFromString("0.10")},
		{StoreID: env.store.ID, Name: "future", StartDate: now.AddDate(0, 1, 0), EndDate: now.AddDate(0, 2, 0), DiscountRate: decimal.RequireFromString("0.10")},
	}
	for i := range seed {
		require.NoError(t, env.db.Omit("Products").Create(&seed[i]).Error)
	}

	type row struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	list := func(t *testing.T, query string) ([]row, int64) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/promotions"+query, nil), testShop)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var page struct {
			List  []row `json:"list"`
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
		return page.List, page.Total
	}

	rows, total := list(t, "")
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 3)
	assert.Equal(t, "future", rows[0].Name)

	rows, total = list(t, "?status=ongoing")
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, row{Name: "live", Status: "ongoing"}, rows[0])

	rows, _ = list(t, "?status=completed")
	require.Len(t, rows, 1)
	assert.Equal(t, "past", rows[0].Name)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/promotions?status=archived", nil), testShop)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, query := range []string{"?page=0", "?page=10001", "?page=9223372036854775807", "?page_size=101"} {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/promotions"+query, nil), testShop)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestGetPromotion(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	req := postForm("/api/promotions", summerSaleForm())
	req.Header.Set("Accept", "application/json")
	w := env.do(t, req, testShop)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))

	t.Run("详情", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/promotions/%d", created.ID), nil), testShop)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var detail struct {
			Name     string `json:"name"`
			Products []struct {
				VariantShopifyID string          `json:"variant_shopify_id"`
				OriginalPrice    decimal.Decimal `json:"original_price"`
				PromotionalPrice decimal.Decimal `json:"promotional_price"`
			} `json:"products"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &detail))
		assert.Equal(t, "Summer Sale", detail.Name)
		require.Len(t, detail.Products, 2)
		assert.Equal(t, "gid://shopify/ProductVariant/11", detail.Products[0].VariantShopifyID)
		assert.True(t, decimal.NewFromInt(100).Equal(detail.Products[0].OriginalPrice))
		assert.True(t, decimal.NewFromInt(90).Equal(detail.Products[0].PromotionalPrice))
	})

	t.Run("其他店铺不可见", func(t *testing.T) {
		other := &model.Store{ShopifyID: "gid://shopify/Shop/2", Domain: otherShop}
		require.NoError(t, env.db.Create(other).Error)

		w := env.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/promotions/%d", created.ID), nil), otherShop)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ID 无效", func(t *testing.T) {
		w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/promotions/abc", nil), testShop)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// ==================== 店铺 ====================

func TestStoreSync_RateLimited(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/store/sync", nil), testShop)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var store struct {
		ID       int64      `json:"id"`
		Email    string     `json:"email"`
		SyncedAt *time.Time `json:"synced_at"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &store))
	assert.Equal(t, env.store.ID, store.ID)
	assert.Equal(t, "owner@example.com", store.Email)
	assert.NotNil(t, store.SyncedAt)

	w = env.do(t, httptest.NewRequest(http.MethodPost, "/api/store/sync", nil), testShop)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestStoreSync_UpstreamFailure(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{shopErr: errors.New("connection reset")})

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/store/sync", nil), testShop)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Failed to sync store.", decode(t, w).Message)

	// 失败不占冷却，再次同步仍然到达上游
	w = env.do(t, httptest.NewRequest(http.MethodPost, "/api/store/sync", nil), testShop)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGetStore(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/store", nil), testShop)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/store", nil), otherShop)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, service.MsgStoreNotFound, decode(t, w).Message)
}

// ==================== 折扣码 ====================

func TestDiscountCodes_GenerateAndList(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/discount-codes", nil), testShop)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var code struct {
		Code     string `json:"code"`
		Title    string `json:"title"`
		AdminURL string `json:"admin_url"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &code))
	assert.True(t, strings.HasPrefix(code.Code, "DISCOUNT-"))
	assert.Equal(t, "10% off selected items", code.Title)
	assert.Equal(t, "shopify:admin/discounts/987", code.AdminURL)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/discount-codes", nil), testShop)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		List     []json.RawMessage `json:"list"`
		Total    int64             `json:"total"`
		PageSize int               `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.List, 1)
	assert.Equal(t, service.DiscountListPageSize, page.PageSize)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/api/discount-codes?page=10001", nil), testShop)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ==================== 指标 ====================

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestEnv(t, &fakeShopify{})

	w := env.do(t, postForm("/api/promotions", summerSaleForm()), testShop)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "test_promotions_created_total 1")
	assert.Contains(t, body, "test_promotion_products_created_total 2")
	assert.Contains(t, body, `test_http_requests_total{method="POST",path="/api/promotions",status="303"} 1`)
}
