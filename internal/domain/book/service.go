package book

import (
	"context"
	"errors"
	"regexp"
)

// Service 图书目录领域服务
// 订单侧只读价格、通过StockLedger改库存,这里只处理目录本身
type Service interface {
	// PublishBook 上架图书
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 价格必须在1-999999分之间
	// - 库存必须>=0
	// - ISBN不能重复
	PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, description string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询图书列表
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) PublishBook(ctx context.Context, isbn, title, author, publisher string, price int64, stock int, description string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	if price < 1 || price > 999999 {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	// 先查一次给出友好错误,并发下的重复由唯一索引兜底
	existing, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existing != nil {
		return nil, ErrISBNDuplicate
	}
	if err != nil && !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	b := NewBook(isbn, title, author, publisher, price, stock, description)
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

var nonDigit = regexp.MustCompile(`[^0-9]`)

// isValidISBN 校验ISBN格式
// 只检查位数(10或13位数字),分隔符会被忽略
func isValidISBN(isbn string) bool {
	clean := nonDigit.ReplaceAllString(isbn, "")
	return len(clean) == 10 || len(clean) == 13
}
