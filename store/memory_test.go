package store

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/homerec/core"
)

func TestMemoryStore_KV(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) error = %v, want not found", err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get(k) = %q, %v", got, err)
	}

	batch, _ := s.BatchGet(ctx, []string{"k", "missing"})
	if len(batch) != 1 || string(batch["k"]) != "v" {
		t.Errorf("BatchGet() = %v", batch)
	}

	_ = s.Delete(ctx, "k")
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(after delete) error = %v, want not found", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.Set(ctx, "k", []byte("v"), 1)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expire error = %v", err)
	}
	s.mu.Lock()
	s.data["k"].expire = time.Now().Add(-time.Second)
	s.mu.Unlock()
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get() after expire error = %v, want not found", err)
	}
}

func TestMemoryStore_Hash(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_ = s.HSet(ctx, "products", "p1", []byte(`{"p_id":"p1"}`))
	_ = s.HSet(ctx, "products", "p2", []byte(`{"p_id":"p2"}`))

	v, err := s.HGet(ctx, "products", "p1")
	if err != nil || string(v) != `{"p_id":"p1"}` {
		t.Errorf("HGet() = %q, %v", v, err)
	}
	if _, err := s.HGet(ctx, "products", "p9"); !core.IsStoreNotFound(err) {
		t.Errorf("HGet(missing) error = %v, want not found", err)
	}
	all, _ := s.HGetAll(ctx, "products")
	if len(all) != 2 {
		t.Errorf("HGetAll() len = %d, want 2", len(all))
	}
}

func TestMemoryStore_LPushUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	for _, v := range []string{"a", "b", "c", "a", "d"} {
		if err := s.LPushUnique(ctx, "h", v, 3); err != nil {
			t.Fatalf("LPushUnique(%s) error = %v", v, err)
		}
	}

	tests := []struct {
		start, stop int64
		want        []string
	}{
		{0, -1, []string{"d", "a", "c"}},
		{0, 0, []string{"d"}},
		{1, 10, []string{"a", "c"}},
		{-2, -1, []string{"a", "c"}},
		{5, 9, []string{}},
	}
	for _, tt := range tests {
		got, err := s.LRange(ctx, "h", tt.start, tt.stop)
		if err != nil {
			t.Fatalf("LRange() error = %v", err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LRange(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
		}
	}

	empty, _ := s.LRange(ctx, "none", 0, -1)
	if len(empty) != 0 {
		t.Errorf("LRange(none) = %v, want empty", empty)
	}
}

func TestMemoryStore_ListTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStoreWithListTTL(time.Minute)
	defer s.Close()

	for i := 0; i < 100; i++ {
		if err := s.LPushUnique(ctx, fmt.Sprintf("history:s%d", i), "a", 10); err != nil {
			t.Fatalf("LPushUnique() error = %v", err)
		}
	}
	if got, _ := s.LRange(ctx, "history:s0", 0, -1); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("LRange() before expiry = %v, want [a]", got)
	}

	// 清理周期到达时过期列表被回收
	s.purge(time.Now().Add(2 * time.Minute))
	s.mu.RLock()
	lists, expires := len(s.lists), len(s.listExpire)
	s.mu.RUnlock()
	if lists != 0 || expires != 0 {
		t.Errorf("after purge lists = %d, expires = %d, want 0", lists, expires)
	}

	short := NewMemoryStoreWithListTTL(20 * time.Millisecond)
	defer short.Close()
	_ = short.LPushUnique(ctx, "h", "a", 10)
	time.Sleep(40 * time.Millisecond)
	if got, _ := short.LRange(ctx, "h", 0, -1); len(got) != 0 {
		t.Errorf("LRange() after expiry = %v, want empty", got)
	}
	_ = short.LPushUnique(ctx, "h", "b", 10)
	if got, _ := short.LRange(ctx, "h", 0, -1); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("LRange() after re-push = %v, want [b]", got)
	}

	// 未配置 TTL 的列表不过期
	forever := NewMemoryStore()
	defer forever.Close()
	_ = forever.LPushUnique(ctx, "h", "a", 10)
	forever.purge(time.Now().Add(24 * time.Hour))
	if got, _ := forever.LRange(ctx, "h", 0, -1); len(got) != 1 {
		t.Errorf("LRange() without ttl = %v, want [a]", got)
	}
}

func TestOpen_DefaultsToMemory(t *testing.T) {
	s, err := Open(context.Background(), RedisConfig{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if s.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", s.Name())
	}
}

// 需要本地 Redis：HOMEREC_TEST_REDIS_ADDR=localhost:6379
func TestRedisStore_List(t *testing.T) {
	addr := os.Getenv("HOMEREC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("HOMEREC_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, ListTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	key := "homerec:test:history"
	_ = s.Delete(ctx, key)
	defer s.Delete(ctx, key)

	for _, v := range []string{"a", "b", "a", "c"} {
		if err := s.LPushUnique(ctx, key, v, 2); err != nil {
			t.Fatalf("LPushUnique() error = %v", err)
		}
	}
	got, err := s.LRange(ctx, key, 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"c", "a"}) {
		t.Errorf("LRange() = %v, want [c a]", got)
	}

	if _, err := s.Get(ctx, "homerec:test:missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
}
