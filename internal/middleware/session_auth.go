package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== Session Token 配置 ====================

// SessionConfig App Bridge session token 校验配置
type SessionConfig struct {
	APIKey    string        // aud
	APISecret string        // HS256 签名密钥
	Leeway    time.Duration // 时钟偏差容忍
}

const defaultLeeway = 5 * time.Second

// ErrMissingSecret 未配置签名密钥，拒绝校验和签发
var ErrMissingSecret = errors.New("session token secret is not configured")

// ==================== Claims 定义 ====================

// SessionClaims Shopify session token 声明
type SessionClaims struct {
	Dest string `json:"dest"` // https://{shop}.myshopify.com
	Sid  string `json:"sid"`
	jwt.RegisteredClaims
}

// ShopDomain 从 dest 解析店铺域名
func (c *SessionClaims) ShopDomain() (string, error) {
	u, err := url.Parse(c.Dest)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid dest %q", c.Dest)
	}
	if !strings.HasSuffix(u.Host, ".myshopify.com") {
		return "", fmt.Errorf("dest %q is not a myshopify domain", c.Dest)
	}
	return u.Host, nil
}

// StaffUserID sub 为员工 ID
func (c *SessionClaims) StaffUserID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// ==================== Token 解析 ====================

// ParseSessionToken 校验签名、有效期和 aud
func ParseSessionToken(cfg SessionConfig, tokenString string) (*SessionClaims, error) {
	if cfg.APISecret == "" {
		return nil, ErrMissingSecret
	}
	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = defaultLeeway
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.APISecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(cfg.APIKey),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SignSessionToken 签发 session token，本地调试和测试用
func SignSessionToken(cfg SessionConfig, shop string, userID int64, ttl time.Duration) (string, error) {
	if cfg.APISecret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := &SessionClaims{
		Dest: "https://" + shop,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://" + shop + "/admin",
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  jwt.ClaimStrings{cfg.APIKey},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.APISecret))
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyShop   = "shop"
	ContextKeyUserID = "user_id"
)

// SessionAuth session token 认证中间件
func SessionAuth(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "未提供认证信息",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证格式错误，应为 Bearer {token}",
			})
			c.Abort()
			return
		}

		claims, err := ParseSessionToken(cfg, parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 无效或已过期",
			})
			c.Abort()
			return
		}

		shop, err := claims.ShopDomain()
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "Token 缺少店铺信息",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyShop, shop)
		c.Set(ContextKeyUserID, claims.StaffUserID())

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// GetShop 从 Context 获取店铺域名
func GetShop(c *gin.Context) string {
	if shop, exists := c.Get(ContextKeyShop); exists {
		return shop.(string)
	}
	return ""
}

// GetUserID 从 Context 获取员工 ID
func GetUserID(c *gin.Context) int64 {
	if id, exists := c.Get(ContextKeyUserID); exists {
		return id.(int64)
	}
	return 0
}
