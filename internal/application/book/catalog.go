package book

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
)

// CatalogService 图书目录用例
// 订单只引用已上架的图书,这里提供上架和查询,库存的后续变动全部由订单服务完成
type CatalogService struct {
	books book.Service
	log   *zap.Logger
}

// NewCatalogService 创建图书目录用例
func NewCatalogService(books book.Service, log *zap.Logger) *CatalogService {
	return &CatalogService{books: books, log: log}
}

// PublishRequest 上架请求
type PublishRequest struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Price       int64 // 价格(分)
	Stock       int   // 初始库存
	Description string
}

// BookView 图书详情
type BookView struct {
	ID          uint      `json:"id"`
	ISBN        string    `json:"isbn"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Publisher   string    `json:"publisher"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Publish 上架图书
func (s *CatalogService) Publish(ctx context.Context, req PublishRequest) (*BookView, error) {
	b, err := s.books.PublishBook(ctx, req.ISBN, req.Title, req.Author, req.Publisher, req.Price, req.Stock, req.Description)
	if err != nil {
		return nil, err
	}
	s.log.Info("图书已上架", zap.Uint("book_id", b.ID), zap.String("isbn", b.ISBN), zap.Int("stock", b.Stock))
	return toView(b, true), nil
}

// Get 查询图书详情(含当前库存)
func (s *CatalogService) Get(ctx context.Context, id uint) (*BookView, error) {
	b, err := s.books.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(b, true), nil
}

// ListRequest 列表查询参数
type ListRequest struct {
	Page     int // 从1开始
	PageSize int
	Keyword  string
	SortBy   string // price_asc | price_desc | created_at_desc
}

// ListResponse 列表查询结果
type ListResponse struct {
	List       []*BookView `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// List 分页查询,列表不返回description
func (s *CatalogService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := s.books.ListBooks(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	list := make([]*BookView, len(books))
	for i, b := range books {
		list[i] = toView(b, false)
	}
	return &ListResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: int((total + int64(req.PageSize) - 1) / int64(req.PageSize)),
	}, nil
}

func toView(b *book.Book, withDescription bool) *BookView {
	v := &BookView{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Publisher: b.Publisher,
		Price:     b.Price,
		Stock:     b.Stock,
		CreatedAt: b.CreatedAt,
	}
	if withDescription {
		v.Description = b.Description
	}
	return v
}
