package dto

import (
	"fmt"
	"time"

	appbook "github.com/xiebiao/bookstore-backoffice/internal/application/book"
)

// PublishBookRequest HTTP上架请求
type PublishBookRequest struct {
	ISBN        string `json:"isbn" binding:"required" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"required,max=100" example:"人民邮电出版社"`
	Price       int64  `json:"price" binding:"required,min=1,max=999999" example:"5900"` // 价格(分)
	Stock       int    `json:"stock" binding:"min=0" example:"100"`
	Description string `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID          uint      `json:"id" example:"1"`
	ISBN        string    `json:"isbn" example:"9787115428028"`
	Title       string    `json:"title" example:"Go语言实战"`
	Author      string    `json:"author" example:"威廉·肯尼迪"`
	Publisher   string    `json:"publisher" example:"人民邮电出版社"`
	Price       int64     `json:"price" example:"5900"`
	PriceYuan   string    `json:"priceYuan" example:"59.00"`
	Stock       int       `json:"stock" example:"100"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc" example:"created_at_desc"`
}

// NewBookResponse 应用层视图 → HTTP响应
func NewBookResponse(v *appbook.BookView) *BookResponse {
	return &BookResponse{
		ID:          v.ID,
		ISBN:        v.ISBN,
		Title:       v.Title,
		Author:      v.Author,
		Publisher:   v.Publisher,
		Price:       v.Price,
		PriceYuan:   FormatPriceYuan(v.Price),
		Stock:       v.Stock,
		Description: v.Description,
		CreatedAt:   v.CreatedAt,
	}
}

// FormatPriceYuan 格式化价格(分→元),例如 5900 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	sign := ""
	if priceFen < 0 {
		sign, priceFen = "-", -priceFen
	}
	return fmt.Sprintf("%s%d.%02d", sign, priceFen/100, priceFen%100)
}
