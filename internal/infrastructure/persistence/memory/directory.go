package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiebiao/bookstore-backoffice/internal/domain/directory"
)

type memberKey struct {
	kind directory.Kind
	id   uuid.UUID
}

// DirectoryStore 内存版用户/客户/门店目录
type DirectoryStore struct {
	s    *Store
	kind directory.Kind
}

// NewDirectoryStore 创建指定类别的目录
func NewDirectoryStore(s *Store, kind directory.Kind) *DirectoryStore {
	return &DirectoryStore{s: s, kind: kind}
}

func (d *DirectoryStore) Kind() directory.Kind {
	return d.kind
}

func (d *DirectoryStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	_, ok := d.s.members[memberKey{d.kind, id}]
	return ok, nil
}

// Add 登记一个成员
func (d *DirectoryStore) Add(ids ...uuid.UUID) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, id := range ids {
		d.s.members[memberKey{d.kind, id}] = struct{}{}
	}
}
