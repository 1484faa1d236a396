package store

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/homerec/core"
)

// MemoryStore 是内存实现的 Store，用于测试 / 开发 / 单机部署。
// 支持 KV（带 TTL）、Hash 与有界列表，进程重启后数据丢失。
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string]*entry
	hashes     map[string]map[string][]byte
	lists      map[string][]string
	listExpire map[string]time.Time
	listTTL    time.Duration
	clean      *time.Ticker
	done       chan struct{}
	once       sync.Once
}

type entry struct {
	value  []byte
	expire time.Time // 零值表示永不过期
}

func (e *entry) expired(now time.Time) bool {
	return !e.expire.IsZero() && now.After(e.expire)
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithListTTL(0)
}

// NewMemoryStoreWithListTTL 创建内存存储，列表每次写入后 listTTL 过期，与 RedisStore 的 list_ttl 一致；0 表示不过期。
func NewMemoryStoreWithListTTL(listTTL time.Duration) *MemoryStore {
	ms := &MemoryStore{
		data:       make(map[string]*entry),
		hashes:     make(map[string]map[string][]byte),
		lists:      make(map[string][]string),
		listExpire: make(map[string]time.Time),
		listTTL:    listTTL,
		clean:      time.NewTicker(10 * time.Second),
		done:       make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.expired(time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		e.expire = time.Now().Add(time.Duration(ttl[0]) * time.Second)
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.hashes, key)
	delete(m.lists, key)
	delete(m.listExpire, key)
	return nil
}

func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		e, ok := m.data[k]
		if !ok || e.expired(now) {
			continue
		}
		result[k] = e.value
	}
	return result, nil
}

func (m *MemoryStore) Close() error {
	m.once.Do(func() {
		m.clean.Stop()
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case now := <-m.clean.C:
			m.purge(now)
		}
	}
}

// purge 删除 now 时刻已过期的 KV 与列表。
func (m *MemoryStore) purge(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, e := range m.data {
		if e.expired(now) {
			delete(m.data, k)
		}
	}
	for k, exp := range m.listExpire {
		if now.After(exp) {
			delete(m.lists, k)
			delete(m.listExpire, k)
		}
	}
}

func (m *MemoryStore) listExpired(key string, now time.Time) bool {
	exp, ok := m.listExpire[key]
	return ok && now.After(exp)
}

func (m *MemoryStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.hashes[key][field]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}

func (m *MemoryStore) HSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string][]byte)
		m.hashes[key] = h
	}
	h[field] = value
	return nil
}

func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(m.hashes[key]))
	for f, v := range m.hashes[key] {
		result[f] = v
	}
	return result, nil
}

func (m *MemoryStore) LPushUnique(_ context.Context, key, value string, maxLen int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	old := m.lists[key]
	if m.listExpired(key, now) {
		old = nil
	}
	list := make([]string, 0, len(old)+1)
	list = append(list, value)
	for _, v := range old {
		if v != value {
			list = append(list, v)
		}
	}
	if maxLen > 0 && len(list) > maxLen {
		list = list[:maxLen]
	}
	m.lists[key] = list
	if m.listTTL > 0 {
		m.listExpire[key] = now.Add(m.listTTL)
	}
	return nil
}

func (m *MemoryStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.lists[key]
	if m.listExpired(key, time.Now()) {
		list = nil
	}
	n := int64(len(list))
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

var (
	_ core.KeyValueStore = (*MemoryStore)(nil)
	_ core.ListStore     = (*MemoryStore)(nil)
)
