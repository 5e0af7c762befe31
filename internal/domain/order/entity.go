package order

import (
	"time"

	"github.com/google/uuid"
)

// State 订单删除状态
// 软删除和硬删除不是两个布尔开关,而是同一个状态机上的两条边:
//
//	Active ──update──▶ Active
//	Active ──soft delete──▶ SoftDeleted (保留记录,也保留库存预占)
//	Active ──delete──▶ Purged (归还库存,删除记录)
//	SoftDeleted ──delete──▶ Purged (归还库存,删除记录)
type State int

const (
	StateActive      State = 1 // 有效
	StateSoftDeleted State = 2 // 已软删除
	StatePurged      State = 3 // 已物理删除(只存在于内存,落库前即被删除)
)

// String 实现Stringer接口(方便日志输出)
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateSoftDeleted:
		return "soft_deleted"
	case StatePurged:
		return "purged"
	default:
		return "unknown"
	}
}

// HoldsReservation 该状态下订单是否仍占用库存
func (s State) HoldsReservation() bool {
	return s == StateActive || s == StateSoftDeleted
}

// Order 订单实体(聚合根)
// 1. Line是子实体,每本书只有一行(落库前必须经过MergeLines)
// 2. Total/TotalBooks是派生字段,只能由Recalculate写入
// 3. 金额统一用int64"分"
type Order struct {
	ID         uuid.UUID
	UserID     uuid.UUID // 下单的后台用户
	ClientID   uuid.UUID // 购书客户
	ShopID     uuid.UUID // 发货门店
	Lines      []Line
	Total      int64 // 订单总金额(分)
	TotalBooks int   // 合并后的明细行数
	State      State
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line 订单明细
// Price必须与下单时目录价一致,Total = Quantity × Price
type Line struct {
	BookID   uint
	Quantity int
	Price    int64
	Total    int64
}

// NewLine 创建明细行并计算小计
func NewLine(bookID uint, quantity int, price int64) Line {
	l := Line{BookID: bookID, Quantity: quantity, Price: price}
	l.recalculate()
	return l
}

func (l *Line) recalculate() {
	l.Total = int64(l.Quantity) * l.Price
}

// NewOrder 创建新订单(工厂方法)
// 此时订单还只是草稿:未校验、未预占库存
func NewOrder(userID, clientID, shopID uuid.UUID, lines []Line) *Order {
	now := time.Now()
	o := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		ClientID:  clientID,
		ShopID:    shopID,
		Lines:     lines,
		State:     StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.Recalculate()
	return o
}

// IsDeleted 是否已软删除或物理删除
func (o *Order) IsDeleted() bool {
	return o.State != StateActive
}

// BookIDs 订单涉及的图书ID(按明细顺序,可能有重复)
func (o *Order) BookIDs() []uint {
	ids := make([]uint, 0, len(o.Lines))
	for _, l := range o.Lines {
		ids = append(ids, l.BookID)
	}
	return ids
}

// Recalculate 重新计算每行小计、订单总额和明细数
func (o *Order) Recalculate() {
	var total int64
	for i := range o.Lines {
		o.Lines[i].recalculate()
		total += o.Lines[i].Total
	}
	o.Total = total
	o.TotalBooks = len(o.Lines)
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target State) bool {
	switch o.State {
	case StateActive:
		return target == StateActive || target == StateSoftDeleted || target == StatePurged
	case StateSoftDeleted:
		return target == StatePurged
	default:
		return false
	}
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target State) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStateTransition.WithID(Entity, o.ID)
	}
	o.State = target
	o.UpdatedAt = time.Now()
	return nil
}

// Replace 用新订单的内容原地覆盖当前订单
// ID、CreatedAt保持不变
func (o *Order) Replace(next *Order) error {
	if err := o.TransitionTo(StateActive); err != nil {
		return err
	}
	o.UserID = next.UserID
	o.ClientID = next.ClientID
	o.ShopID = next.ShopID
	o.Lines = next.Lines
	o.Recalculate()
	return nil
}

// Clone 深拷贝,用于在修改前保留旧的明细
func (o *Order) Clone() *Order {
	cp := *o
	cp.Lines = append([]Line(nil), o.Lines...)
	return &cp
}
