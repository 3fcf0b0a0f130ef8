package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"easy_promos/internal/api/dto"
	"easy_promos/internal/middleware"
	"easy_promos/internal/service"
)

type StoreController struct {
	storeSvc *service.StoreService
}

func NewStoreController(storeSvc *service.StoreService) *StoreController {
	return &StoreController{storeSvc: storeSvc}
}

// Get 当前店铺
// @Summary 当前店铺
// @Tags Store (店铺)
// @Produce json
// @Security SessionToken
// @Success 200 {object} dto.Response{data=dto.StoreResp}
// @Failure 404 {object} dto.Response "Store not found."
// @Router /api/store [get]
func (s *StoreController) Get(c *gin.Context) {
	store := currentStore(c, s.storeSvc)
	if store == nil {
		return
	}
	success(c, http.StatusOK, dto.ToStoreResp(store))
}

// Sync 从 Shopify 同步店铺资料
// @Summary 手动同步店铺
// @Description 使用离线 token 查询 shop 并按 ShopifyID upsert，每店铺每分钟一次
// @Tags Store (店铺)
// @Produce json
// @Security SessionToken
// @Success 200 {object} dto.Response{data=dto.StoreResp}
// @Failure 404 {object} dto.Response "会话不存在"
// @Failure 429 {object} dto.Response "限流中"
// @Failure 502 {object} dto.Response "Shopify 调用失败"
// @Router /api/store/sync [post]
func (s *StoreController) Sync(c *gin.Context) {
	store, err := s.storeSvc.SyncStore(c.Request.Context(), middleware.GetShop(c))
	if err != nil {
		writeError(c, err, "Failed to sync store.")
		return
	}
	success(c, http.StatusOK, dto.ToStoreResp(store))
}
