package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	"github.com/xiebiao/bookstore-backoffice/pkg/metrics"
)

func TestTxManager_CompensatesOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)
	ledger := NewStockLedger(s)
	orders := NewOrderRepository(s)
	tx := NewTxManager(time.Second, zap.NewNop())

	b := book.NewBook("9787115428028", "Go", "A", "P", 100, 5, "")
	require.NoError(t, books.Create(ctx, b))

	before := testutil.ToFloat64(metrics.CompensationsTotal)
	o := order.NewOrder(uuid.New(), uuid.New(), uuid.New(), []order.Line{order.NewLine(b.ID, 3, 100)})

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, ledger.Adjust(ctx, b.ID, -3))
		require.NoError(t, orders.Create(ctx, o))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.CompensationsTotal))

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "库存被补偿回来")
	_, err = orders.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound, "订单插入被撤销")

	require.NoError(t, tx.Transaction(ctx, func(ctx context.Context) error {
		if err := ledger.Adjust(ctx, b.ID, -3); err != nil {
			return err
		}
		return orders.Create(ctx, o)
	}))
	got, err = books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestTxManager_UndoUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	orders := NewOrderRepository(s)
	tx := NewTxManager(0, zap.NewNop())

	o := order.NewOrder(uuid.New(), uuid.New(), uuid.New(), []order.Line{order.NewLine(1, 1, 100)})
	require.NoError(t, orders.Create(ctx, o))

	err := tx.Transaction(ctx, func(ctx context.Context) error {
		changed := o.Clone()
		changed.Lines = []order.Line{order.NewLine(2, 5, 10)}
		changed.Recalculate()
		require.NoError(t, orders.Update(ctx, changed))
		require.NoError(t, orders.Delete(ctx, o.ID))
		return errors.New("rollback")
	})
	require.Error(t, err)

	got, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Lines, got.Lines)
	assert.Equal(t, int64(100), got.Total)
}

func TestStockLedger(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)
	ledger := NewStockLedger(s)

	b := book.NewBook("9787115428028", "Go", "A", "P", 100, 1, "")
	require.NoError(t, books.Create(ctx, b))

	locked, err := ledger.Lock(ctx, []uint{b.ID, 99})
	require.NoError(t, err)
	assert.Len(t, locked, 1)

	// 快照不影响存储
	locked[b.ID].Stock = 100
	got, _ := books.FindByID(ctx, b.ID)
	assert.Equal(t, 1, got.Stock)

	assert.ErrorIs(t, ledger.Adjust(ctx, b.ID, -2), book.ErrInsufficientStock)
	assert.ErrorIs(t, ledger.Adjust(ctx, 99, 1), book.ErrBookNotFound)
	assert.ErrorIs(t, books.Create(ctx, book.NewBook("9787115428028", "x", "a", "p", 1, 1, "")), book.ErrISBNDuplicate)
}

func TestOrderRepository_ListAndCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	orders := NewOrderRepository(s)
	user := uuid.New()

	for i := 1; i <= 3; i++ {
		require.NoError(t, orders.Create(ctx, order.NewOrder(user, uuid.New(), uuid.New(), []order.Line{order.NewLine(1, i, 100)})))
	}
	soft := order.NewOrder(uuid.New(), uuid.New(), uuid.New(), []order.Line{order.NewLine(1, 1, 1)})
	soft.State = order.StateSoftDeleted
	require.NoError(t, orders.Create(ctx, soft))

	items, total, err := orders.List(ctx, order.ByUser(user), order.Page{Size: 2, OrderBy: order.SortByTotal})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	assert.Equal(t, int64(100), items[0].Total)

	items, _, err = orders.List(ctx, order.ByUser(user), order.Page{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, total, err = orders.List(ctx, order.Filter{}.WithDeleted(true), order.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	got, err := orders.FindByID(ctx, soft.ID)
	require.NoError(t, err)
	got.Lines[0].Quantity = 42
	again, _ := orders.FindByID(ctx, soft.ID)
	assert.Equal(t, 1, again.Lines[0].Quantity, "返回的是副本")

	ok, err := orders.ExistsByUserID(ctx, user)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	users := NewDirectoryStore(s, directory.KindUser)
	shops := NewDirectoryStore(s, directory.KindShop)
	id := uuid.New()
	users.Add(id)

	ok, err := users.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = shops.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "不同类别互不影响")
}
