package book

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedIDs(t *testing.T) {
	assert.Equal(t, []uint{1, 3, 7}, SortedIDs([]uint{7, 1, 3, 7, 1}))
	assert.Empty(t, SortedIDs(nil))
}

func TestBook_ApplyDelta(t *testing.T) {
	b := &Book{ID: 5, Stock: 2}

	require.NoError(t, b.ApplyDelta(-2))
	assert.Equal(t, 0, b.Stock)

	err := b.ApplyDelta(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 0, b.Stock, "失败时库存不能变化")

	require.NoError(t, b.ApplyDelta(3))
	assert.Equal(t, 3, b.Stock)
}

// fakeRepo 只实现目录服务用到的方法
type fakeRepo struct {
	byISBN map[string]*Book
	nextID uint
}

func (f *fakeRepo) Create(_ context.Context, b *Book) error {
	f.nextID++
	b.ID = f.nextID
	f.byISBN[b.ISBN] = b
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uint) (*Book, error) {
	for _, b := range f.byISBN {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, NotFound(id)
}

func (f *fakeRepo) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	if b, ok := f.byISBN[isbn]; ok {
		return b, nil
	}
	return nil, ErrBookNotFound
}

func (f *fakeRepo) List(context.Context, ListParams) ([]*Book, int64, error) {
	return nil, 0, nil
}

func TestService_PublishBook(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{byISBN: map[string]*Book{}})

	t.Run("正常上架", func(t *testing.T) {
		b, err := svc.PublishBook(ctx, "978-7-115-42802-8", "Go", "A", "P", 999, 10, "")
		require.NoError(t, err)
		assert.NotZero(t, b.ID)
		assert.Equal(t, 10, b.Stock)
	})

	t.Run("ISBN重复", func(t *testing.T) {
		_, err := svc.PublishBook(ctx, "978-7-115-42802-8", "Go", "A", "P", 999, 10, "")
		assert.ErrorIs(t, err, ErrISBNDuplicate)
	})

	t.Run("参数校验", func(t *testing.T) {
		_, err := svc.PublishBook(ctx, "123", "Go", "A", "P", 999, 1, "")
		assert.ErrorIs(t, err, ErrInvalidISBN)

		_, err = svc.PublishBook(ctx, "9787115428029", "Go", "A", "P", 0, 1, "")
		assert.ErrorIs(t, err, ErrInvalidPrice)

		_, err = svc.PublishBook(ctx, "9787115428029", "Go", "A", "P", 100, -1, "")
		assert.ErrorIs(t, err, ErrInvalidStock)
	})
}
