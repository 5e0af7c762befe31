package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
)

type bookRow = book.Book

// BookRepository 内存图书目录
type BookRepository struct {
	s *Store
}

// NewBookRepository 创建内存图书目录
func NewBookRepository(s *Store) book.Repository {
	return &BookRepository{s: s}
}

func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.isbn[b.ISBN]; ok {
		return book.ErrISBNDuplicate
	}
	r.s.nextID++
	now := time.Now()
	b.ID = r.s.nextID
	b.CreatedAt, b.UpdatedAt = now, now

	row := *b
	r.s.books[row.ID] = &row
	r.s.isbn[row.ISBN] = row.ID

	record(ctx, "create book", func() {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		delete(r.s.books, row.ID)
		delete(r.s.isbn, row.ISBN)
	})
	return nil
}

func (r *BookRepository) FindByID(_ context.Context, id uint) (*book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.books[id]
	if !ok {
		return nil, book.NotFound(id)
	}
	cp := *row
	return &cp, nil
}

func (r *BookRepository) FindByISBN(_ context.Context, isbn string) (*book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.isbn[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *r.s.books[id]
	return &cp, nil
}

func (r *BookRepository) List(_ context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.s.mu.RLock()
	matched := make([]*book.Book, 0, len(r.s.books))
	keyword := strings.ToLower(params.Keyword)
	for _, row := range r.s.books {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(row.Title), keyword) &&
			!strings.Contains(strings.ToLower(row.Author), keyword) &&
			!strings.Contains(strings.ToLower(row.Publisher), keyword) {
			continue
		}
		cp := *row
		matched = append(matched, &cp)
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch params.SortBy {
		case "price_asc":
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case "price_desc":
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	page, size := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return paginate(matched, (page-1)*size, size), int64(len(matched)), nil
}

// StockLedger 内存库存账本
// 行锁由TxManager的全局锁代替,Lock只返回快照
type StockLedger struct {
	s *Store
}

// NewStockLedger 创建内存库存账本
func NewStockLedger(s *Store) book.StockLedger {
	return &StockLedger{s: s}
}

func (l *StockLedger) Lock(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	books := make(map[uint]*book.Book, len(ids))
	for _, id := range book.SortedIDs(ids) {
		if row, ok := l.s.books[id]; ok {
			cp := *row
			books[id] = &cp
		}
	}
	return books, nil
}

func (l *StockLedger) Adjust(ctx context.Context, id uint, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	row, ok := l.s.books[id]
	if !ok {
		return book.NotFound(id)
	}
	if err := row.ApplyDelta(delta); err != nil {
		return err
	}

	record(ctx, "adjust stock", func() {
		l.s.mu.Lock()
		defer l.s.mu.Unlock()
		if row, ok := l.s.books[id]; ok {
			row.Stock -= delta
		}
	})
	return nil
}

func paginate[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
