package mysql

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

var dbSeq int64

// newTestDB 每个测试一个独立的内存SQLite库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:bookstore_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := Open(sqlite.Open(name), false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedBook(t *testing.T, db *gorm.DB, isbn string, price int64, stock int) *book.Book {
	t.Helper()
	b := book.NewBook(isbn, "title "+isbn, "author", "publisher", price, stock, "")
	require.NoError(t, NewBookRepository(db).Create(context.Background(), b))
	return b
}

func TestBookRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBookRepository(db)

	b := seedBook(t, db, "9787115428028", 5900, 3)
	assert.NotZero(t, b.ID)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5900), got.Price)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	err = repo.Create(ctx, book.NewBook("9787115428028", "dup", "a", "p", 1, 1, ""))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)

	seedBook(t, db, "9787111111111", 100, 1)
	books, total, err := repo.List(ctx, book.ListParams{Page: 1, PageSize: 10, SortBy: "price_asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, books, 2)
	assert.Equal(t, int64(100), books[0].Price)
}

func TestStockLedger(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ledger := NewStockLedger(db)
	b1 := seedBook(t, db, "9787115428028", 100, 5)
	b2 := seedBook(t, db, "9787111111111", 200, 1)

	locked, err := ledger.Lock(ctx, []uint{b2.ID, b1.ID, 404})
	require.NoError(t, err)
	assert.Len(t, locked, 2, "不存在的ID直接跳过")
	assert.Equal(t, 5, locked[b1.ID].Stock)

	require.NoError(t, ledger.Adjust(ctx, b1.ID, -5))
	err = ledger.Adjust(ctx, b1.ID, -1)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
	err = ledger.Adjust(ctx, 404, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	got, err := NewBookRepository(db).FindByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock, "库存不能为负")
}

func TestTxManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	ledger := NewStockLedger(db)
	b := seedBook(t, db, "9787115428028", 100, 5)
	tx := NewTxManager(db, 0)

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		require.NoError(t, ledger.Adjust(ctx, b.ID, -3))
		// 嵌套事务复用外层
		return tx.Transaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})
	require.Error(t, err)

	got, err := NewBookRepository(db).FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock, "回滚后库存不变")

	require.NoError(t, tx.Transaction(ctx, func(ctx context.Context) error {
		return ledger.Adjust(ctx, b.ID, -2)
	}))
	got, err = NewBookRepository(db).FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)
}

func newOrder(userID, clientID, shopID uuid.UUID, lines ...order.Line) *order.Order {
	return order.NewOrder(userID, clientID, shopID, lines)
}

func TestOrderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	user, client, shop := uuid.New(), uuid.New(), uuid.New()

	o := newOrder(user, client, shop, order.NewLine(2, 1, 300), order.NewLine(1, 2, 100))
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, int64(500), got.Total)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, uint(2), got.Lines[0].BookID, "明细顺序保持不变")

	locked, err := repo.LockByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, locked.Lines, 2)

	got.Lines = []order.Line{order.NewLine(3, 4, 50)}
	got.Recalculate()
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(200), got.Total)
	assert.Equal(t, 1, got.TotalBooks)

	exists, err := repo.ExistsByUserID(ctx, user)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, o.ID))
	_, err = repo.FindByID(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, o.ID), order.ErrOrderNotFound)

	var lineCount int64
	require.NoError(t, db.Model(&OrderLineModel{}).Count(&lineCount).Error)
	assert.Zero(t, lineCount)

	err = repo.Update(ctx, order.NewOrder(user, client, shop, nil))
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestOrderRepository_List(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	userA, userB, client, shop := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, newOrder(userA, client, shop, order.NewLine(1, i, 100))))
	}
	soft := newOrder(userB, client, shop, order.NewLine(1, 9, 100))
	require.NoError(t, soft.TransitionTo(order.StateSoftDeleted))
	require.NoError(t, repo.Create(ctx, soft))

	items, total, err := repo.List(ctx, order.Filter{}, order.Page{Page: 0, Size: 2, OrderBy: order.SortByTotal, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "默认不含软删除订单")
	require.Len(t, items, 2)
	assert.Equal(t, int64(300), items[0].Total)
	assert.Equal(t, int64(200), items[1].Total)

	items, total, err = repo.List(ctx, order.Filter{}.WithDeleted(true), order.Page{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, items, 4)

	items, total, err = repo.List(ctx, order.ByUser(userB).WithDeleted(true), order.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, soft.ID, items[0].ID)
	assert.Equal(t, order.StateSoftDeleted, items[0].State)

	_, total, err = repo.List(ctx, order.ByShop(uuid.New()), order.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDirectoryStores(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	id := uuid.New()
	require.NoError(t, db.Create(&ClientModel{ID: id.String(), Name: "Acme"}).Error)

	clients := NewClientStore(db)
	assert.Equal(t, directory.KindClient, clients.Kind())

	ok, err := clients.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewShopStore(db).Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, directory.Require(ctx, NewUserStore(db), id), directory.ErrUserNotFound)
}

func TestTranslateError(t *testing.T) {
	deadlock := &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}
	assert.ErrorIs(t, translateError(deadlock), order.ErrConcurrentModification)
	assert.ErrorIs(t, translateError(&mysqldriver.MySQLError{Number: 1205}), order.ErrConcurrentModification)
	assert.ErrorIs(t, translateError(&mysqldriver.MySQLError{Number: 1062}), errDuplicateEntryApp)
	assert.ErrorIs(t, translateError(gorm.ErrDuplicatedKey), errDuplicateEntryApp)
	assert.Equal(t, apperrors.KindTransient, apperrors.KindOf(translateError(context.DeadlineExceeded)))
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(translateError(errors.New("syntax error"))))
	assert.Nil(t, translateError(nil))

	already := book.NotFound(7)
	assert.Same(t, already, translateError(already))
}
