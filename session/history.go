// Package session 维护会话级浏览历史（最新在前、去重、有界）。
package session

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// DefaultLimit 默认保留的浏览历史条数。
const DefaultLimit = 10

// History 基于 core.ListStore 的浏览历史。
// Key 格式：{KeyPrefix}{sessionID}。
type History struct {
	Store     core.ListStore
	KeyPrefix string
	Limit     int
}

func NewHistory(s core.ListStore, keyPrefix string, limit int) *History {
	return &History{Store: s, KeyPrefix: keyPrefix, Limit: limit}
}

func (h *History) limit() int {
	if h.Limit <= 0 {
		return DefaultLimit
	}
	return h.Limit
}

func (h *History) key(sessionID string) string {
	return h.KeyPrefix + sessionID
}

// Push 记录一次浏览：商品移到最前，已存在则去重，超出上限的最旧记录被丢弃。
func (h *History) Push(ctx context.Context, sessionID, productID string) error {
	if sessionID == "" || productID == "" {
		return core.NewDomainError(core.ModuleSession, core.ErrorCodeInvalidInput, "session: session id and product id are required")
	}
	if err := h.Store.LPushUnique(ctx, h.key(sessionID), productID, h.limit()); err != nil {
		return core.WrapDomainError(core.ModuleSession, core.ErrorCodeUnavailable, "session: push history", err)
	}
	return nil
}

// Get 返回最近浏览的商品 ID（最新在前）；无会话或无记录时返回空切片。
func (h *History) Get(ctx context.Context, sessionID string) ([]string, error) {
	if sessionID == "" {
		return []string{}, nil
	}
	ids, err := h.Store.LRange(ctx, h.key(sessionID), 0, int64(h.limit()-1))
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSession, core.ErrorCodeUnavailable, "session: read history", err)
	}
	return ids, nil
}
