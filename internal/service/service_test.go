package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"easy_promos/internal/model"
	"easy_promos/internal/repository"
	"easy_promos/pkg/shopify"
)

// ==================== Mock 实现 ====================

type mockShopify struct {
	getShopFn        func(ctx context.Context, shop, token string) (*shopify.ShopInfo, error)
	createDiscountFn func(ctx context.Context, shop, token string, in shopify.DiscountCodeBasicInput) (*shopify.DiscountCodeResult, error)

	lastDiscountInput shopify.DiscountCodeBasicInput
	getShopCalls      int
}

func (m *mockShopify) GetShop(ctx context.Context, shop, token string) (*shopify.ShopInfo, error) {
	m.getShopCalls++
	if m.getShopFn != nil {
		return m.getShopFn(ctx, shop, token)
	}
	return &shopify.ShopInfo{
		ID:              "gid://shopify/Shop/1",
		Name:            "Demo Store",
		Email:           "owner@example.com",
		MyshopifyDomain: shop,
		URL:             "https://" + shop,
	}, nil
}

func (m *mockShopify) CreateBasicDiscountCode(ctx context.Context, shop, token string, in shopify.DiscountCodeBasicInput) (*shopify.DiscountCodeResult, error) {
	m.lastDiscountInput = in
	if m.createDiscountFn != nil {
		return m.createDiscountFn(ctx, shop, token, in)
	}
	node := &shopify.DiscountCodeNode{ID: "gid://shopify/DiscountCodeNode/123456"}
	node.CodeDiscount.Title = in.Title
	node.CodeDiscount.StartsAt = in.StartsAt
	node.CodeDiscount.EndsAt = in.EndsAt
	return &shopify.DiscountCodeResult{CodeDiscountNode: node}, nil
}

// ==================== 测试辅助函数 ====================

const testShop = "demo.myshopify.com"

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Store{}, &model.Session{},
		&model.Product{}, &model.ProductVariant{},
		&model.Promotion{}, &model.PromotionProduct{},
		&model.DiscountCode{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func seedStoreRow(t *testing.T, db *gorm.DB, domain string) *model.Store {
	store := &model.Store{
		ShopifyID: "gid://shopify/Shop/" + domain,
		Domain:    domain,
		Name:      domain,
	}
	require.NoError(t, db.Create(store).Error)
	return store
}

func seedOfflineSession(t *testing.T, db *gorm.DB, shop string) {
	require.NoError(t, db.Create(&model.Session{
		ID:          "offline_" + shop,
		Shop:        shop,
		AccessToken: "shpat_test",
		Scope:       "write_discounts,read_products",
	}).Error)
}

func newTestPromotionService(db *gorm.DB) *PromotionService {
	return NewPromotionService(
		repository.NewPromotionUnitOfWork(db),
		repository.NewPromotionRepository(db),
		DefaultPricingPolicy(),
		nil,
	)
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

// failOnTable 注入写库失败，模拟级联中途出错
func failOnTable(t *testing.T, db *gorm.DB, table string) {
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_"+table, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errors.New("injected failure on " + table))
		}
	})
	require.NoError(t, err)
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
