package mysql

import (
	"time"
)

// 这里是infrastructure层的数据模型(带GORM tag),
// domain层实体不依赖GORM,Repository负责两者转换。

// BookModel GORM图书模型
// 1. 价格用int64存储"分"
// 2. ISBN唯一索引
// 3. stock只由stockLedger修改
type BookModel struct {
	ID          uint      `gorm:"primaryKey"`
	ISBN        string    `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string    `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string    `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher   string    `gorm:"size:100;not null;comment:出版社"`
	Price       int64     `gorm:"index:idx_list;not null;comment:价格(分)"`
	Stock       int       `gorm:"not null;default:0;comment:可售库存"`
	Description string    `gorm:"type:text;comment:图书描述"`
	CreatedAt   time.Time `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt   time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// OrderModel GORM订单模型
// 1. 主键是UUID字符串
// 2. 与OrderLineModel一对多,明细按position保持提交顺序
// 3. state: 1有效 2已软删除
type OrderModel struct {
	ID         string           `gorm:"primaryKey;size:36;comment:订单ID"`
	UserID     string           `gorm:"index;size:36;not null;comment:下单用户ID"`
	ClientID   string           `gorm:"index;size:36;not null;comment:客户ID"`
	ShopID     string           `gorm:"index;size:36;not null;comment:门店ID"`
	Total      int64            `gorm:"index;not null;comment:订单总金额(分)"`
	TotalBooks int              `gorm:"not null;comment:明细行数"`
	State      int              `gorm:"index;type:tinyint;not null;default:1;comment:状态(1有效2已软删除)"`
	Lines      []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt  time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderLineModel GORM订单明细模型
type OrderLineModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  string `gorm:"index;size:36;not null;comment:订单ID"`
	Position int    `gorm:"not null;comment:明细顺序"`
	BookID   uint   `gorm:"index;not null;comment:图书ID"`
	Quantity int    `gorm:"not null;comment:数量"`
	Price    int64  `gorm:"not null;comment:单价(分)"`
	Total    int64  `gorm:"not null;comment:小计(分)"`
}

// TableName 指定表名
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// UserModel 后台用户(只读,由账号系统同步)
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Nickname  string    `gorm:"size:50;comment:昵称"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ClientModel 客户(只读)
type ClientModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null;comment:客户名称"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (ClientModel) TableName() string {
	return "clients"
}

// ShopModel 门店(只读)
type ShopModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;not null;comment:门店名称"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
}

// TableName 指定表名
func (ShopModel) TableName() string {
	return "shops"
}
