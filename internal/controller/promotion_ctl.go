package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"easy_promos/internal/api/dto"
	"easy_promos/internal/middleware"
	"easy_promos/internal/model"
	"easy_promos/internal/service"
)

// IndexPath 创建成功后的跳转地址
const IndexPath = "/app"

type PromotionController struct {
	promotionSvc *service.PromotionService
	storeSvc     *service.StoreService
	now          func() time.Time
}

func NewPromotionController(promotionSvc *service.PromotionService, storeSvc *service.StoreService) *PromotionController {
	return &PromotionController{
		promotionSvc: promotionSvc,
		storeSvc:     storeSvc,
		now:          time.Now,
	}
}

// List 活动列表
// @Summary 活动列表
// @Description 按开始时间倒序分页，每行附带实时状态和徽标
// @Tags Promotion (促销活动)
// @Produce json
// @Security SessionToken
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param status query string false "状态筛选" Enums(scheduled, ongoing, completed)
// @Success 200 {object} dto.Response{data=dto.PageResp{list=[]dto.PromotionResp}}
// @Failure 400 {object} dto.Response "参数错误"
// @Failure 404 {object} dto.Response "店铺不存在"
// @Failure 500 {object} dto.Response "服务器错误"
// @Router /api/promotions [get]
func (p *PromotionController) List(c *gin.Context) {
	var req dto.PromotionListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	filter := service.PromotionListFilter{Page: req.Page, PageSize: req.PageSize}
	if req.Status != "" {
		status, err := model.ParsePromotionStatus(req.Status)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}

	store := currentStore(c, p.storeSvc)
	if store == nil {
		return
	}

	views, total, err := p.promotionSvc.ListPromotions(c.Request.Context(), store.ID, filter, p.now())
	if err != nil {
		writeError(c, err, "Failed to load promotions.")
		return
	}

	list := make([]dto.PromotionResp, 0, len(views))
	for i := range views {
		list = append(list, dto.ToPromotionResp(&views[i].Promotion, views[i].Status))
	}
	success(c, http.StatusOK, dto.PageResp{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// Get 活动详情
// @Summary 活动详情
// @Description 包含关联商品、变体及原价/活动价
// @Tags Promotion (促销活动)
// @Produce json
// @Security SessionToken
// @Param id path int true "活动 ID"
// @Success 200 {object} dto.Response{data=dto.PromotionDetailResp}
// @Failure 400 {object} dto.Response "ID 无效"
// @Failure 404 {object} dto.Response "活动不存在"
// @Failure 500 {object} dto.Response "服务器错误"
// @Router /api/promotions/{id} [get]
func (p *PromotionController) Get(c *gin.Context) {
	id := parseID(c, "id")
	if id == 0 {
		return
	}

	store := currentStore(c, p.storeSvc)
	if store == nil {
		return
	}

	promotion, err := p.promotionSvc.GetPromotion(c.Request.Context(), store.ID, id)
	if err != nil {
		writeError(c, err, "Failed to load promotion.")
		return
	}
	success(c, http.StatusOK, dto.ToPromotionDetailResp(promotion, p.now()))
}

// Create 创建活动
// @Summary 创建活动
// @Description 表单提交，selectedProducts 为 JSON 字符串。成功后 303 跳转到 /app，Accept 为 JSON 时返回 redirect 字段
// @Tags Promotion (促销活动)
// @Accept x-www-form-urlencoded,mpfd,json
// @Produce json
// @Security SessionToken
// @Param name formData string true "活动名称"
// @Param startDate formData string true "开始时间 ISO-8601"
// @Param endDate formData string true "结束时间 ISO-8601"
// @Param selectedProducts formData string true "[{id, title?, price?, variants:[{id, price?}]}]"
// @Param tags formData string false "逗号分隔的标签"
// @Success 201 {object} dto.Response{data=dto.CreatePromotionResp}
// @Success 303 {string} string "跳转到 /app"
// @Failure 400 {object} dto.Response "Missing required fields."
// @Failure 404 {object} dto.Response "Store not found."
// @Failure 500 {object} dto.Response "Failed to create promotion."
// @Router /api/promotions [post]
func (p *PromotionController) Create(c *gin.Context) {
	var req dto.CreatePromotionReq
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, service.MsgMissingFields)
		return
	}

	store := currentStore(c, p.storeSvc)
	if store == nil {
		return
	}

	promotion, err := p.promotionSvc.CreatePromotion(c.Request.Context(), store.ID, service.CreatePromotionInput{
		Name:             req.Name,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		SelectedProducts: req.SelectedProducts,
		Tags:             req.TagList(),
		UserID:           middleware.GetUserID(c),
	})
	if err != nil {
		writeError(c, err, service.MsgCreatePromotionFailed)
		return
	}

	if wantsJSON(c) {
		success(c, http.StatusCreated, dto.CreatePromotionResp{ID: promotion.ID, Redirect: IndexPath})
		return
	}
	c.Redirect(http.StatusSeeOther, IndexPath)
}
