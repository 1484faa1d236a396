package behavior

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/homerec/core"
)

// StoreSource 从 core.Store（Redis / 内存）读取行为数据。
//
// Key 格式：{KeyPrefix}wishlist:{userID} / {KeyPrefix}cart:{userID} / {KeyPrefix}orders:{userID}，
// Value 为商品 ID 的 JSON 数组，例如 ["p1","p2"]。key 不存在视为空列表。
type StoreSource struct {
	Store     core.Store
	KeyPrefix string
}

func NewStoreSource(s core.Store, keyPrefix string) *StoreSource {
	return &StoreSource{Store: s, KeyPrefix: keyPrefix}
}

func (s *StoreSource) Name() string {
	if s.Store == nil {
		return "store"
	}
	return "store:" + s.Store.Name()
}

func (s *StoreSource) Wishlist(ctx context.Context, userID string) ([]string, error) {
	return s.list(ctx, "wishlist", userID)
}

func (s *StoreSource) Cart(ctx context.Context, userID string) ([]string, error) {
	return s.list(ctx, "cart", userID)
}

func (s *StoreSource) Orders(ctx context.Context, userID string) ([]string, error) {
	return s.list(ctx, "orders", userID)
}

// Key 返回某类行为数据的存储 key。
func (s *StoreSource) Key(kind, userID string) string {
	return s.KeyPrefix + kind + ":" + userID
}

// Put 写入某类行为数据（用于数据同步与测试）。
func (s *StoreSource) Put(ctx context.Context, kind, userID string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("behavior: marshal %s: %w", kind, err)
	}
	return s.Store.Set(ctx, s.Key(kind, userID), data)
}

func (s *StoreSource) list(ctx context.Context, kind, userID string) ([]string, error) {
	if s.Store == nil {
		return nil, nil
	}
	data, err := s.Store.Get(ctx, s.Key(kind, userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, core.WrapDomainError(core.ModuleBehavior, core.ErrorCodeInvalidInput,
			"behavior: decode "+s.Key(kind, userID), err)
	}
	return ids, nil
}

var _ core.BehaviorSource = (*StoreSource)(nil)
