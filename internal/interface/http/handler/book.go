package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookstore-backoffice/internal/application/book"
	"github.com/xiebiao/bookstore-backoffice/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-backoffice/pkg/errors"
	"github.com/xiebiao/bookstore-backoffice/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	catalog *appbook.CatalogService
}

// NewBookHandler 创建图书处理器
func NewBookHandler(catalog *appbook.CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// PublishBook 上架图书
// @Summary      上架图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.ErrBindError.WithErr(err))
		return
	}

	v, err := h.catalog.Publish(c.Request.Context(), appbook.PublishRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewBookResponse(v))
}

// GetBook 图书详情(含当前库存)
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errors.ErrInvalidParams.WithErr(err))
		return
	}
	v, err := h.catalog.Get(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(v))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码(从1开始)"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "搜索标题、作者、出版社"
// @Param        sort_by   query string false "排序" Enums(price_asc, price_desc, created_at_desc)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.BookResponse}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, errors.ErrInvalidParams.WithErr(err))
		return
	}

	res, err := h.catalog.List(c.Request.Context(), appbook.ListRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.BookResponse, len(res.List))
	for i, v := range res.List {
		list[i] = dto.NewBookResponse(v)
	}
	response.SuccessWithPage(c, list, res.Total, res.Page, res.PageSize)
}
