package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ==================== 配置结构 ====================

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Shopify  ShopifyConfig  `mapstructure:"shopify"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Discount DiscountConfig `mapstructure:"discount"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	Env             string        `mapstructure:"env" validate:"oneof=development production test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            string        `mapstructure:"port" validate:"required"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

// DSN 生成 PostgreSQL 连接串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// ShopifyConfig Shopify App 凭证
type ShopifyConfig struct {
	APIKey     string `mapstructure:"api_key" validate:"required"`    // session token aud
	APISecret  string `mapstructure:"api_secret" validate:"required"` // session token 签名密钥
	APIVersion string `mapstructure:"api_version" validate:"required"`
}

// PricingConfig 活动定价策略
// 调用方未提供商品资料时使用占位数据
type PricingConfig struct {
	DiscountRate     decimal.Decimal `mapstructure:"-"`
	PlaceholderTitle string          `mapstructure:"placeholder_title" validate:"required"`
	PlaceholderPrice decimal.Decimal `mapstructure:"-"`

	RawDiscountRate     string `mapstructure:"discount_rate"`
	RawPlaceholderPrice string `mapstructure:"placeholder_price"`
}

// DiscountConfig 折扣码生成参数
type DiscountConfig struct {
	MinimumSubtotal string `mapstructure:"minimum_subtotal" validate:"required,numeric"`
	UsageLimit      int    `mapstructure:"usage_limit" validate:"gte=0"`
	ValidDays       int    `mapstructure:"valid_days" validate:"gte=1"`
}

// TaskConfig 定时任务配置
type TaskConfig struct {
	StoreSyncEnabled bool   `mapstructure:"store_sync_enabled"`
	StoreSyncSpec    string `mapstructure:"store_sync_spec"`
}

// ==================== 加载 ====================

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "easy_promos")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.max_open_conns", 100)
	v.SetDefault("db.conn_max_lifetime", time.Hour)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("log.level", "info")

	v.SetDefault("shopify.api_key", "")
	v.SetDefault("shopify.api_secret", "")
	v.SetDefault("shopify.api_version", "2025-01")

	v.SetDefault("pricing.discount_rate", "0.10")
	v.SetDefault("pricing.placeholder_title", "Default title")
	v.SetDefault("pricing.placeholder_price", "100")

	v.SetDefault("discount.minimum_subtotal", "50.0")
	v.SetDefault("discount.usage_limit", 100)
	v.SetDefault("discount.valid_days", 365)

	v.SetDefault("task.store_sync_enabled", true)
	v.SetDefault("task.store_sync_spec", "0 0 */6 * * *")
}

// Load 读取配置
// 优先级：环境变量 > .env > 默认值，环境变量名为 key 大写并把 . 换成 _ (如 DB_HOST)
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用环境变量")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	var err error
	if cfg.Pricing.DiscountRate, err = decimal.NewFromString(cfg.Pricing.RawDiscountRate); err != nil {
		return nil, fmt.Errorf("pricing.discount_rate 格式错误: %w", err)
	}
	if cfg.Pricing.PlaceholderPrice, err = decimal.NewFromString(cfg.Pricing.RawPlaceholderPrice); err != nil {
		return nil, fmt.Errorf("pricing.placeholder_price 格式错误: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if !c.Pricing.DiscountRate.IsPositive() || c.Pricing.DiscountRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("pricing.discount_rate 必须在 (0, 1) 区间内, 当前 %s", c.Pricing.DiscountRate)
	}
	if !c.Pricing.PlaceholderPrice.IsPositive() {
		return fmt.Errorf("pricing.placeholder_price 必须大于 0, 当前 %s", c.Pricing.PlaceholderPrice)
	}
	return nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
