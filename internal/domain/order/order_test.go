package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/book"
	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// ============================================================
// 测试替身
// ============================================================

type fakeDirectory struct {
	kind directory.Kind
	ids  map[uuid.UUID]bool
}

func (d fakeDirectory) Kind() directory.Kind { return d.kind }

func (d fakeDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	return d.ids[id], nil
}

// fakeLedger 记录每次Adjust调用,便于断言顺序
type fakeLedger struct {
	books   map[uint]*book.Book
	adjusts []uint
}

func (l *fakeLedger) Lock(_ context.Context, ids []uint) (map[uint]*book.Book, error) {
	out := make(map[uint]*book.Book)
	for _, id := range book.SortedIDs(ids) {
		if b, ok := l.books[id]; ok {
			cp := *b
			out[id] = &cp
		}
	}
	return out, nil
}

func (l *fakeLedger) Adjust(_ context.Context, id uint, delta int) error {
	l.adjusts = append(l.adjusts, id)
	b, ok := l.books[id]
	if !ok {
		return book.NotFound(id)
	}
	return b.ApplyDelta(delta)
}

type fixture struct {
	user, client, shop uuid.UUID
	ledger             *fakeLedger
	validator          *Validator
}

func newFixture() *fixture {
	f := &fixture{user: uuid.New(), client: uuid.New(), shop: uuid.New()}
	f.ledger = &fakeLedger{books: map[uint]*book.Book{
		1: {ID: 1, Price: 999, Stock: 10},
		2: {ID: 2, Price: 500, Stock: 2},
	}}
	f.validator = NewValidator(
		fakeDirectory{kind: directory.KindUser, ids: map[uuid.UUID]bool{f.user: true}},
		fakeDirectory{kind: directory.KindClient, ids: map[uuid.UUID]bool{f.client: true}},
		fakeDirectory{kind: directory.KindShop, ids: map[uuid.UUID]bool{f.shop: true}},
		f.ledger,
	)
	return f
}

func (f *fixture) order(lines ...Line) *Order {
	return NewOrder(f.user, f.client, f.shop, lines)
}

// ============================================================
// MergeLines
// ============================================================

func TestMergeLines_SumsQuantities(t *testing.T) {
	merged := MergeLines([]Line{
		NewLine(7, 3, 10),
		NewLine(8, 1, 20),
		NewLine(7, 2, 10),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, Line{BookID: 7, Quantity: 5, Price: 10, Total: 50}, merged[0])
	assert.Equal(t, Line{BookID: 8, Quantity: 1, Price: 20, Total: 20}, merged[1])
}

func TestMergeLines_KeepsFirstPriceAndIsIdempotent(t *testing.T) {
	in := []Line{NewLine(1, 1, 100), NewLine(1, 2, 90)}
	once := MergeLines(in)
	twice := MergeLines(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, int64(100), once[0].Price)
	assert.Equal(t, int64(300), once[0].Total)
	assert.Equal(t, 1, in[0].Quantity, "入参不能被修改")
}

func TestMergeLines_Empty(t *testing.T) {
	assert.Empty(t, MergeLines(nil))
}

// ============================================================
// Entity
// ============================================================

func TestOrder_Recalculate(t *testing.T) {
	o := NewOrder(uuid.New(), uuid.New(), uuid.New(), []Line{
		{BookID: 1, Quantity: 4, Price: 999},
		{BookID: 2, Quantity: 1, Price: 500},
	})

	assert.Equal(t, int64(3996), o.Lines[0].Total)
	assert.Equal(t, int64(4496), o.Total)
	assert.Equal(t, 2, o.TotalBooks)
	assert.False(t, o.IsDeleted())
}

func TestOrder_StateTransitions(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StateActive, StateActive, true},
		{StateActive, StateSoftDeleted, true},
		{StateActive, StatePurged, true},
		{StateSoftDeleted, StatePurged, true},
		{StateSoftDeleted, StateActive, false},
		{StateSoftDeleted, StateSoftDeleted, false},
		{StatePurged, StateActive, false},
	}
	for _, c := range cases {
		o := &Order{ID: uuid.New(), State: c.from}
		err := o.TransitionTo(c.to)
		if c.ok {
			assert.NoError(t, err, "%s -> %s", c.from, c.to)
			assert.Equal(t, c.to, o.State)
		} else {
			assert.ErrorIs(t, err, ErrInvalidStateTransition, "%s -> %s", c.from, c.to)
			assert.Equal(t, c.from, o.State)
		}
	}
}

func TestState_HoldsReservation(t *testing.T) {
	assert.True(t, StateActive.HoldsReservation())
	assert.True(t, StateSoftDeleted.HoldsReservation())
	assert.False(t, StatePurged.HoldsReservation())
}

func TestOrder_ReplaceKeepsIdentity(t *testing.T) {
	o := NewOrder(uuid.New(), uuid.New(), uuid.New(), []Line{NewLine(1, 4, 999)})
	id, created := o.ID, o.CreatedAt

	next := NewOrder(uuid.New(), uuid.New(), uuid.New(), []Line{NewLine(2, 1, 500)})
	require.NoError(t, o.Replace(next))

	assert.Equal(t, id, o.ID)
	assert.Equal(t, created, o.CreatedAt)
	assert.Equal(t, next.ShopID, o.ShopID)
	assert.Equal(t, int64(500), o.Total)

	soft := &Order{ID: uuid.New(), State: StateSoftDeleted}
	assert.ErrorIs(t, soft.Replace(next), ErrInvalidStateTransition)
}

// ============================================================
// Validator
// ============================================================

func TestValidator_Valid(t *testing.T) {
	f := newFixture()
	o := f.order(NewLine(1, 4, 999), NewLine(1, 2, 999))

	require.NoError(t, f.validator.Validate(context.Background(), o))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, 6, o.Lines[0].Quantity)
	assert.Equal(t, 1, o.TotalBooks)
	assert.Equal(t, 10, f.ledger.books[1].Stock, "校验不能修改库存")
}

func TestValidator_ReferencesCheckedBeforeLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 明细本身也不合法,但应先报引用错误
	o := NewOrder(uuid.New(), f.client, f.shop, nil)
	assert.ErrorIs(t, f.validator.Validate(ctx, o), directory.ErrUserNotFound)

	o = NewOrder(f.user, uuid.New(), uuid.New(), nil)
	assert.ErrorIs(t, f.validator.Validate(ctx, o), directory.ErrClientNotFound)

	o = NewOrder(f.user, f.client, uuid.New(), nil)
	assert.ErrorIs(t, f.validator.Validate(ctx, o), directory.ErrShopNotFound)
}

func TestValidator_LineErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name   string
		lines  []Line
		want   error
		bookID string
	}{
		{"没有明细", nil, ErrOrderHasNoItems, ""},
		{"图书不存在", []Line{NewLine(99, 1, 100)}, book.ErrBookNotFound, "99"},
		{"库存不足", []Line{NewLine(2, 5, 500)}, book.ErrInsufficientStock, "2"},
		{"合并后库存不足", []Line{NewLine(2, 2, 500), NewLine(2, 1, 500)}, book.ErrInsufficientStock, "2"},
		{"单价不一致", []Line{NewLine(1, 4, 800)}, ErrPriceMismatch, "1"},
		{"数量为0", []Line{NewLine(1, 0, 999)}, ErrInvalidQuantity, "1"},
		{"图书不存在优先于数量", []Line{NewLine(99, 0, 100)}, book.ErrBookNotFound, "99"},
		{"按明细顺序报错", []Line{NewLine(1, 0, 999), NewLine(2, 5, 500)}, ErrInvalidQuantity, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.validator.Validate(ctx, f.order(tt.lines...))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			if tt.bookID != "" {
				appErr := apperrors.GetAppError(err)
				assert.Equal(t, book.Entity, appErr.Entity)
				assert.Equal(t, tt.bookID, appErr.ID)
			}
		})
	}
}

// ============================================================
// Reservation
// ============================================================

func TestReservation_ReserveAndRelease(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := NewReservation(f.ledger)

	o := f.order(NewLine(2, 1, 500), NewLine(1, 4, 999))
	require.NoError(t, r.Reserve(ctx, o))
	assert.Equal(t, 6, f.ledger.books[1].Stock)
	assert.Equal(t, 1, f.ledger.books[2].Stock)
	assert.Equal(t, []uint{1, 2}, f.ledger.adjusts, "按图书ID升序处理")
	assert.Equal(t, int64(4496), o.Total)

	require.NoError(t, r.Release(ctx, o))
	assert.Equal(t, 10, f.ledger.books[1].Stock)
	assert.Equal(t, 2, f.ledger.books[2].Stock)
}

func TestReservation_ReserveStopsOnFailure(t *testing.T) {
	f := newFixture()
	r := NewReservation(f.ledger)

	o := f.order(NewLine(1, 1, 999), NewLine(2, 3, 500))
	err := r.Reserve(context.Background(), o)
	assert.ErrorIs(t, err, book.ErrInsufficientStock)
}

// ============================================================
// Filter / Page
// ============================================================

func TestFilter_Matches(t *testing.T) {
	user, shop := uuid.New(), uuid.New()
	active := &Order{UserID: user, ShopID: shop, State: StateActive}
	soft := &Order{UserID: user, ShopID: shop, State: StateSoftDeleted}
	other := &Order{UserID: uuid.New(), State: StateActive}

	assert.True(t, Filter{}.Matches(active))
	assert.False(t, Filter{}.Matches(soft))
	assert.True(t, Filter{}.WithDeleted(true).Matches(soft))
	assert.False(t, Filter{}.WithDeleted(true).Matches(&Order{State: StatePurged}))

	assert.True(t, ByUser(user).Matches(active))
	assert.False(t, ByUser(user).Matches(other))
	assert.True(t, ByShop(shop).Matches(active))
	assert.False(t, ByClient(uuid.New()).Matches(active))
}

func TestPage_Normalize(t *testing.T) {
	p := Page{Page: -1, Size: 0, OrderBy: "price"}.Normalize()
	assert.Equal(t, Page{Page: 0, Size: DefaultPageSize, OrderBy: SortByCreatedAt}, p)

	p = Page{Page: 2, Size: 500, OrderBy: SortByTotal}.Normalize()
	assert.Equal(t, MaxPageSize, p.Size)
	assert.Equal(t, 200, p.Offset())

	assert.True(t, ParseDirection("desc"))
	assert.False(t, ParseDirection("ASC"))
}

func TestSortOrders(t *testing.T) {
	a := &Order{Total: 300}
	b := &Order{Total: 100}
	c := &Order{Total: 200}
	orders := []*Order{a, b, c}

	SortOrders(orders, Page{OrderBy: SortByTotal})
	assert.Equal(t, []*Order{b, c, a}, orders)

	SortOrders(orders, Page{OrderBy: SortByTotal, Desc: true})
	assert.Equal(t, []*Order{a, c, b}, orders)
}

func TestSortOrders_TieBreakByID(t *testing.T) {
	now := time.Now()
	ids := []uuid.UUID{
		uuid.MustParse("00000000-0000-4000-8000-000000000001"),
		uuid.MustParse("00000000-0000-4000-8000-000000000002"),
		uuid.MustParse("00000000-0000-4000-8000-000000000003"),
	}
	x := &Order{ID: ids[0], Total: 100, CreatedAt: now}
	y := &Order{ID: ids[1], Total: 100, CreatedAt: now}
	z := &Order{ID: ids[2], Total: 100, CreatedAt: now}

	for _, p := range []Page{
		{OrderBy: SortByTotal},
		{OrderBy: SortByTotal, Desc: true},
		{OrderBy: SortByCreatedAt, Desc: true},
	} {
		// 输入顺序不同,结果相同
		first := []*Order{z, x, y}
		second := []*Order{y, z, x}
		SortOrders(first, p)
		SortOrders(second, p)
		assert.Equal(t, []*Order{x, y, z}, first)
		assert.Equal(t, first, second)
	}

	orders := []*Order{x, z, y}
	SortOrders(orders, Page{OrderBy: SortByID, Desc: true})
	assert.Equal(t, []*Order{z, y, x}, orders)
}

func TestPageResult_TotalPages(t *testing.T) {
	assert.Equal(t, 3, PageResult{Total: 21, Size: 10}.TotalPages())
	assert.Equal(t, 0, PageResult{Total: 0, Size: 10}.TotalPages())
}
