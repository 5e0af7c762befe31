package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 1. 订单和明细是一个聚合,总是一起读写
// 2. 查询用Preload加载明细,避免N+1
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(gorm会一并插入Lines)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := dbFrom(ctx, r.db).Create(toOrderModel(o)).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// FindByID 根据ID查找订单
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model OrderModel
	err := dbFrom(ctx, r.db).
		Preload("Lines", orderLinesByPosition).
		Where("id = ?", id.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NotFound(id)
		}
		return nil, translateError(err)
	}
	return toOrderEntity(&model)
}

// LockByID 加锁读取订单
// SELECT ... FOR UPDATE 只锁orders主记录,明细单独查询
func (r *orderRepository) LockByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	db := dbFrom(ctx, r.db)

	var model OrderModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.NotFound(id)
		}
		return nil, translateError(err)
	}
	if err := db.Scopes(orderLinesByPosition).Where("order_id = ?", model.ID).Find(&model.Lines).Error; err != nil {
		return nil, translateError(err)
	}
	return toOrderEntity(&model)
}

// Update 覆盖订单主记录,明细先删后插
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	db := dbFrom(ctx, r.db)
	model := toOrderModel(o)

	result := db.Model(&OrderModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
		"user_id":     model.UserID,
		"client_id":   model.ClientID,
		"shop_id":     model.ShopID,
		"total":       model.Total,
		"total_books": model.TotalBooks,
		"state":       model.State,
		"updated_at":  model.UpdatedAt,
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return order.NotFound(o.ID)
	}

	if err := db.Where("order_id = ?", model.ID).Delete(&OrderLineModel{}).Error; err != nil {
		return translateError(err)
	}
	if len(model.Lines) == 0 {
		return nil
	}
	if err := db.Create(&model.Lines).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Delete 删除订单及明细
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFrom(ctx, r.db)

	if err := db.Where("order_id = ?", id.String()).Delete(&OrderLineModel{}).Error; err != nil {
		return translateError(err)
	}
	result := db.Where("id = ?", id.String()).Delete(&OrderModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return order.NotFound(id)
	}
	return nil
}

// List 按条件分页查询
func (r *orderRepository) List(ctx context.Context, filter order.Filter, page order.Page) ([]*order.Order, int64, error) {
	page = page.Normalize()
	db := dbFrom(ctx, r.db)

	var total int64
	if err := db.Model(&OrderModel{}).Scopes(filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var models []OrderModel
	err := db.Model(&OrderModel{}).
		Scopes(filterScope(filter), pageScope(page)).
		Preload("Lines", orderLinesByPosition).
		Find(&models).Error
	if err != nil {
		return nil, 0, translateError(err)
	}

	orders := make([]*order.Order, 0, len(models))
	for i := range models {
		o, err := toOrderEntity(&models[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

// ExistsByUserID 用户是否有订单
func (r *orderRepository) ExistsByUserID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID.String()).Limit(1).Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// =========================================
// 查询条件
// =========================================

// filterScope 把order.Filter翻译成WHERE条件
func filterScope(f order.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.IncludeDeleted {
			db = db.Where("state IN ?", []int{int(order.StateActive), int(order.StateSoftDeleted)})
		} else {
			db = db.Where("state = ?", int(order.StateActive))
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", f.UserID.String())
		}
		if f.ClientID != nil {
			db = db.Where("client_id = ?", f.ClientID.String())
		}
		if f.ShopID != nil {
			db = db.Where("shop_id = ?", f.ShopID.String())
		}
		return db
	}
}

var sortColumns = map[string]string{
	order.SortByID:        "id",
	order.SortByCreatedAt: "created_at",
	order.SortByTotal:     "total",
}

// pageScope 排序 + 分页,排序字段相同时按id排,保证翻页稳定
func pageScope(p order.Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column := sortColumns[p.OrderBy]
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: p.Desc})
		if column != "id" {
			db = db.Order("id")
		}
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}

func orderLinesByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

// =========================================
// 模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineModel{
			OrderID:  o.ID.String(),
			Position: i,
			BookID:   l.BookID,
			Quantity: l.Quantity,
			Price:    l.Price,
			Total:    l.Total,
		}
	}

	return &OrderModel{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		ClientID:   o.ClientID.String(),
		ShopID:     o.ShopID.String(),
		Total:      o.Total,
		TotalBooks: o.TotalBooks,
		State:      int(o.State),
		Lines:      lines,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) (*order.Order, error) {
	ids := make([]uuid.UUID, 4)
	for i, s := range []string{model.ID, model.UserID, model.ClientID, model.ShopID} {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.Wrap(err, fmt.Sprintf("corrupted uuid in order %s", model.ID))
		}
		ids[i] = id
	}

	lines := make([]order.Line, len(model.Lines))
	for i, l := range model.Lines {
		lines[i] = order.Line{
			BookID:   l.BookID,
			Quantity: l.Quantity,
			Price:    l.Price,
			Total:    l.Total,
		}
	}

	return &order.Order{
		ID:         ids[0],
		UserID:     ids[1],
		ClientID:   ids[2],
		ShopID:     ids[3],
		Lines:      lines,
		Total:      model.Total,
		TotalBooks: model.TotalBooks,
		State:      order.State(model.State),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}, nil
}
