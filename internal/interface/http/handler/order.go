package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/xiebiao/bookstore-backoffice/internal/application/order"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-backoffice/pkg/errors"
	"github.com/xiebiao/bookstore-backoffice/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	orders *apporder.Service
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orders *apporder.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders 分页查询订单
// @Summary      订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page           query int    false "页码(从0开始)"
// @Param        size           query int    false "每页数量(默认10)"
// @Param        orderBy        query string false "排序字段" Enums(id, createdAt, total)
// @Param        order          query string false "排序方向" Enums(ASC, DESC)
// @Param        includeDeleted query bool   false "是否包含软删除订单"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := h.orders.Search(c.Request.Context(), order.Filter{}.WithDeleted(q.IncludeDeleted), q.ToPage())
	writePage(c, res, err)
}

// GetOrder 查询订单详情
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  校验用户/客户/门店,合并明细,在同一事务内锁定图书并预占库存
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.OrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "没有明细/单价不一致"
// @Failure      404 {object} response.Response "引用的实体不存在"
// @Failure      409 {object} response.Response "库存不足/并发冲突"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	req, ok := bindOrder(c)
	if !ok {
		return
	}
	o, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewOrderResponse(o))
}

// UpdateOrder 修改订单
// @Summary      修改订单
// @Description  归还旧明细的库存后按新明细重新校验、预占,订单ID不变
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string           true "订单ID"
// @Param        request body dto.OrderRequest true "订单信息"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "订单已软删除"
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	req, ok := bindOrder(c)
	if !ok {
		return
	}
	o, err := h.orders.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// DeleteOrder 删除订单并归还库存
// @Summary      删除订单
// @Tags         订单
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      204
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SoftDeleteOrder 软删除订单(不归还库存)
// @Summary      软删除订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "订单已软删除"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/delete/{id} [put]
func (h *OrderHandler) SoftDeleteOrder(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	o, err := h.orders.SoftDeleteOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// ListByUser 按下单用户分页查询
// @Summary      用户的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "用户ID"
// @Param        page query int    false "页码(从0开始)"
// @Param        size query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders/user/{id} [get]
func (h *OrderHandler) ListByUser(c *gin.Context) {
	h.listBy(c, h.orders.ListOrdersByUser)
}

// ListByClient 按客户分页查询
// @Summary      客户的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "客户ID"
// @Param        page query int    false "页码(从0开始)"
// @Param        size query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders/client/{id} [get]
func (h *OrderHandler) ListByClient(c *gin.Context) {
	h.listBy(c, h.orders.ListOrdersByClient)
}

// ListByShop 按门店分页查询
// @Summary      门店的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "门店ID"
// @Param        page query int    false "页码(从0开始)"
// @Param        size query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.OrderResponse}}
// @Router       /api/v1/orders/shop/{id} [get]
func (h *OrderHandler) ListByShop(c *gin.Context) {
	h.listBy(c, h.orders.ListOrdersByShop)
}

type listByFunc func(ctx context.Context, id uuid.UUID, page order.Page) (*order.PageResult, error)

func (h *OrderHandler) listBy(c *gin.Context, list listByFunc) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	q, ok := bindPage(c)
	if !ok {
		return
	}
	res, err := list(c.Request.Context(), id, q.ToPage())
	writePage(c, res, err)
}

func bindOrder(c *gin.Context) (apporder.Request, bool) {
	var body dto.OrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, errors.ErrBindError.WithErr(err))
		return apporder.Request{}, false
	}
	req, err := body.ToRequest(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return apporder.Request{}, false
	}
	return req, true
}

func bindPage(c *gin.Context) (dto.PageQuery, bool) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, errors.ErrInvalidParams.WithErr(err))
		return q, false
	}
	return q, true
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, errors.ErrInvalidParams.WithErr(err))
		return uuid.Nil, false
	}
	return id, true
}

func writePage(c *gin.Context, res *order.PageResult, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewOrderResponses(res.Items), res.Total, res.Page, res.Size)
}
