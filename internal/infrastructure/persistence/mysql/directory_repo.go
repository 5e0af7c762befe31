package mysql

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
)

// directoryStore 用户/客户/门店存在性查询
// 三张表结构不同,但这里只关心主键是否存在
type directoryStore struct {
	db    *gorm.DB
	kind  directory.Kind
	model interface{}
}

// NewUserStore 后台用户
func NewUserStore(db *gorm.DB) directory.Store {
	return &directoryStore{db: db, kind: directory.KindUser, model: &UserModel{}}
}

// NewClientStore 客户
func NewClientStore(db *gorm.DB) directory.Store {
	return &directoryStore{db: db, kind: directory.KindClient, model: &ClientModel{}}
}

// NewShopStore 门店
func NewShopStore(db *gorm.DB) directory.Store {
	return &directoryStore{db: db, kind: directory.KindShop, model: &ShopModel{}}
}

func (s *directoryStore) Kind() directory.Kind {
	return s.kind
}

func (s *directoryStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := dbFrom(ctx, s.db).Model(s.model).Where("id = ?", id.String()).Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}
