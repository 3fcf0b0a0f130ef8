package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"easy_promos/internal/api/dto"
	"easy_promos/internal/middleware"
	"easy_promos/internal/service"
)

type DiscountController struct {
	discountSvc *service.DiscountService
	storeSvc    *service.StoreService
}

func NewDiscountController(discountSvc *service.DiscountService, storeSvc *service.StoreService) *DiscountController {
	return &DiscountController{
		discountSvc: discountSvc,
		storeSvc:    storeSvc,
	}
}

// List 折扣码列表
// @Summary 折扣码列表
// @Description 每页 10 条，按创建时间倒序
// @Tags Discount (折扣码)
// @Produce json
// @Security SessionToken
// @Param page query int false "页码" default(1)
// @Success 200 {object} dto.Response{data=dto.PageResp{list=[]dto.DiscountCodeResp}}
// @Failure 404 {object} dto.Response "Store not found."
// @Router /api/discount-codes [get]
func (d *DiscountController) List(c *gin.Context) {
	var req dto.DiscountCodeListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	store := currentStore(c, d.storeSvc)
	if store == nil {
		return
	}

	codes, total, err := d.discountSvc.ListDiscountCodes(c.Request.Context(), store.ID, req.Page)
	if err != nil {
		writeError(c, err, "Failed to load discount codes.")
		return
	}

	list := make([]dto.DiscountCodeResp, 0, len(codes))
	for i := range codes {
		list = append(list, dto.ToDiscountCodeResp(&codes[i]))
	}
	success(c, http.StatusOK, dto.PageResp{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: service.DiscountListPageSize,
	})
}

// Generate 生成折扣码
// @Summary 生成折扣码
// @Description 调用 discountCodeBasicCreate 创建全店通用折扣码并落库
// @Tags Discount (折扣码)
// @Produce json
// @Security SessionToken
// @Success 201 {object} dto.Response{data=dto.DiscountCodeResp}
// @Failure 400 {object} dto.Response "Shopify userErrors"
// @Failure 404 {object} dto.Response "会话不存在"
// @Failure 502 {object} dto.Response "Shopify 调用失败"
// @Router /api/discount-codes [post]
func (d *DiscountController) Generate(c *gin.Context) {
	code, err := d.discountSvc.GenerateDiscountCode(c.Request.Context(), middleware.GetShop(c))
	if err != nil {
		writeError(c, err, "Failed to create discount code.")
		return
	}
	success(c, http.StatusCreated, dto.ToDiscountCodeResp(code))
}
