package model

import (
	"time"
)

// Store Shopify 店铺
// 通过 ShopifyID 做 upsert，首次同步时懒创建
type Store struct {
	BaseModel
	// --- Shopify 身份 ---
	ShopifyID string `gorm:"size:100;uniqueIndex;not null" json:"shopify_id"` // gid://shopify/Shop/xxx
	Domain    string `gorm:"size:255;uniqueIndex;not null" json:"domain"`     // xxx.myshopify.com

	// --- 店铺资料 ---
	Name  string `gorm:"size:255" json:"name"`
	Email string `gorm:"size:255" json:"email"`
	URL   string `gorm:"size:255" json:"url"`

	// --- 同步状态 ---
	SyncedAt *time.Time `gorm:"comment:最后同步时间" json:"synced_at"`

	// --- 关联关系 ---
	Promotions    []Promotion    `gorm:"foreignKey:StoreID" json:"-"`
	Products      []Product      `gorm:"foreignKey:StoreID" json:"-"`
	DiscountCodes []DiscountCode `gorm:"foreignKey:StoreID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// Session Shopify 会话存储
// 由安装授权流程写入，本服务只读取离线 token 调用 Admin API
type Session struct {
	ID          string     `gorm:"primaryKey;size:255" json:"id"` // offline_{shop} / {shop}_{userId}
	Shop        string     `gorm:"size:255;index;not null" json:"shop"`
	State       string     `gorm:"size:255" json:"-"`
	IsOnline    bool       `gorm:"default:false" json:"is_online"`
	Scope       string     `gorm:"size:1024" json:"scope"`
	Expires     *time.Time `json:"expires"`
	AccessToken string     `gorm:"size:255" json:"-"`
	UserID      int64      `gorm:"default:0" json:"user_id"`
}

func (Session) TableName() string {
	return "sessions"
}
