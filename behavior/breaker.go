package behavior

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/logging"
)

// BreakerConfig 熔断配置。
type BreakerConfig struct {
	// MaxRequests 半开状态允许通过的请求数
	MaxRequests uint32 `koanf:"max_requests"`
	// Interval 关闭状态下清零统计的周期
	Interval time.Duration `koanf:"interval"`
	// Timeout 打开状态持续多久后进入半开
	Timeout time.Duration `koanf:"timeout"`
	// ConsecutiveFailures 连续失败多少次后熔断
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`
}

// DefaultBreakerConfig 返回默认熔断配置。
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Breaker 为行为数据源加熔断：后端持续失败时快速失败，推荐降级为无用户信号，不拖慢请求。
type Breaker struct {
	source core.BehaviorSource
	cb     *gobreaker.CircuitBreaker[[]string]
}

// NewBreaker 用熔断器包装数据源。
func NewBreaker(src core.BehaviorSource, cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	threshold := cfg.ConsecutiveFailures
	name := "behavior:" + src.Name()

	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// 兄弟调用失败导致的取消不是后端故障，既不计成功也不计失败
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("behavior breaker state changed")
		},
	})
	return &Breaker{source: src, cb: cb}
}

func (b *Breaker) Name() string { return b.source.Name() }

// State 返回当前熔断状态（closed / half-open / open）。
func (b *Breaker) State() string { return b.cb.State().String() }

func (b *Breaker) Wishlist(ctx context.Context, userID string) ([]string, error) {
	return b.cb.Execute(func() ([]string, error) { return b.source.Wishlist(ctx, userID) })
}

func (b *Breaker) Cart(ctx context.Context, userID string) ([]string, error) {
	return b.cb.Execute(func() ([]string, error) { return b.source.Cart(ctx, userID) })
}

func (b *Breaker) Orders(ctx context.Context, userID string) ([]string, error) {
	return b.cb.Execute(func() ([]string, error) { return b.source.Orders(ctx, userID) })
}

var _ core.BehaviorSource = (*Breaker)(nil)
