package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/homerec/core"
)

// ListStore 读取商品 ID 列表，key 不存在时返回空列表。
type ListStore interface {
	GetList(ctx context.Context, key string) ([]string, error)
}

// StoreAdapter 将 core.Store 适配为过滤器所需的列表读取接口，value 为商品 ID 的 JSON 数组。
type StoreAdapter struct {
	store core.Store
}

func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

func (a *StoreAdapter) GetList(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "filter: decode list "+key, err)
	}
	return ids, nil
}

// PutList 写入商品 ID 列表。
func (a *StoreAdapter) PutList(ctx context.Context, key string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}
