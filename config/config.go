package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/homerec/behavior"
	"github.com/rushteam/homerec/catalog"
	"github.com/rushteam/homerec/embedding"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/session"
	"github.com/rushteam/homerec/store"
)

// EnvPrefix 环境变量前缀。段与字段之间用双下划线分隔：HOMEREC_RANK__W_IMAGE -> rank.w_image。
const EnvPrefix = "HOMEREC_"

// Config 是服务的完整配置。加载顺序：内置默认值 -> YAML 文件 -> 环境变量（优先级依次升高）。
type Config struct {
	Server    ServerConfig           `koanf:"server"`
	Logging   logging.Config         `koanf:"logging"`
	Embedding embedding.Source       `koanf:"embedding"`
	Rank      RankConfig             `koanf:"rank"`
	Redis     store.RedisConfig      `koanf:"redis"`
	Postgres  PostgresConfig         `koanf:"postgres"`
	Catalog   catalog.Config         `koanf:"catalog"`
	Behavior  BehaviorConfig         `koanf:"behavior"`
	Session   SessionConfig          `koanf:"session"`
	Pipeline  PipelineConfig         `koanf:"pipeline"`
	Breaker   behavior.BreakerConfig `koanf:"breaker"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RateLimit 每个客户端 IP 每分钟的请求上限，0 表示不限流
	RateLimit int `koanf:"rate_limit"`
	// MaxK 请求参数 k 的上限
	MaxK int `koanf:"max_k"`
}

// RankConfig 混合排序配置，四个权重相互独立。
type RankConfig struct {
	WImage    float64 `koanf:"w_image"`
	WCatBrand float64 `koanf:"w_catbrand"`
	WHistory  float64 `koanf:"w_history"`
	WUser     float64 `koanf:"w_user"`
	TopK      int     `koanf:"top_k"`
	Overfetch int     `koanf:"overfetch"`
}

// Weights 转换为排序器权重。
func (r RankConfig) Weights() rank.Weights {
	return rank.Weights{Image: r.WImage, CatBrand: r.WCatBrand, History: r.WHistory, User: r.WUser}
}

type PostgresConfig struct {
	// DSN 为空表示不使用 Postgres
	DSN string `koanf:"dsn"`
}

// 行为数据来源。
const (
	BehaviorNone     = "none"
	BehaviorRedis    = "redis"
	BehaviorPostgres = "postgres"
)

type BehaviorConfig struct {
	// Source: none / redis / postgres
	Source    string        `koanf:"source"`
	KeyPrefix string        `koanf:"key_prefix"`
	Timeout   time.Duration `koanf:"timeout"`
	// Breaker 是否为数据源加熔断
	Breaker bool `koanf:"breaker"`
}

type SessionConfig struct {
	KeyPrefix    string `koanf:"key_prefix"`
	HistoryLimit int    `koanf:"history_limit"`
}

type PipelineConfig struct {
	// Path 后处理 Node 链配置文件（YAML/JSON），为空时只做混合排序
	Path string `koanf:"path"`
}

// Default 返回内置默认配置。
func Default() *Config {
	w := rank.DefaultWeights()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimit:       600,
			MaxK:            50,
		},
		Logging: logging.Config{Level: "info", Format: "json"},
		Embedding: embedding.Source{
			Format:         embedding.FormatNpy,
			EmbeddingsPath: "data/product_embeddings.npy",
			IDsPath:        "data/product_ids.npy",
		},
		Rank: RankConfig{
			WImage:    w.Image,
			WCatBrand: w.CatBrand,
			WHistory:  w.History,
			WUser:     w.User,
			TopK:      rank.DefaultTopK,
			Overfetch: 1,
		},
		Catalog: catalog.Config{
			Source:  catalog.SourceJSON,
			Path:    "data/products.json",
			HashKey: "homerec:products",
		},
		Behavior: BehaviorConfig{
			Source:    BehaviorNone,
			KeyPrefix: "homerec:",
			Timeout:   200 * time.Millisecond,
			Breaker:   true,
		},
		Session: SessionConfig{
			KeyPrefix:    "homerec:history:",
			HistoryLimit: session.DefaultLimit,
		},
		Breaker: behavior.DefaultBreakerConfig(),
	}
}

// Load 加载配置；path 为空时跳过 YAML 文件。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey: HOMEREC_RANK__W_IMAGE -> rank.w_image
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// Validate 校验配置。
func (c *Config) Validate() error {
	if err := c.validateRank(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxK <= 0 {
		return fmt.Errorf("server.max_k must be positive, got %d", c.Server.MaxK)
	}
	return nil
}

func (c *Config) validateRank() error {
	r := c.Rank
	for name, w := range map[string]float64{
		"w_image":    r.WImage,
		"w_catbrand": r.WCatBrand,
		"w_history":  r.WHistory,
		"w_user":     r.WUser,
	} {
		if w < 0 {
			return fmt.Errorf("rank.%s must not be negative, got %v", name, w)
		}
	}
	if r.TopK <= 0 {
		return fmt.Errorf("rank.top_k must be positive, got %d", r.TopK)
	}
	if r.Overfetch < 0 {
		return fmt.Errorf("rank.overfetch must not be negative, got %d", r.Overfetch)
	}
	if c.Session.HistoryLimit <= 0 {
		return fmt.Errorf("session.history_limit must be positive, got %d", c.Session.HistoryLimit)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	switch strings.ToLower(c.Embedding.Format) {
	case "", embedding.FormatNpy:
		if c.Embedding.EmbeddingsPath == "" || c.Embedding.IDsPath == "" {
			return fmt.Errorf("embedding.embeddings_path and embedding.ids_path are required for npy")
		}
	case embedding.FormatParquet:
		if c.Embedding.EmbeddingsPath == "" {
			return fmt.Errorf("embedding.embeddings_path is required for parquet")
		}
	default:
		return fmt.Errorf("embedding.format %q not supported (npy, parquet)", c.Embedding.Format)
	}
	return nil
}

func (c *Config) validateSources() error {
	switch c.Catalog.Source {
	case catalog.SourceJSON:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for json catalog")
		}
	case catalog.SourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for postgres catalog")
		}
	case catalog.SourceRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for redis catalog")
		}
	default:
		return fmt.Errorf("catalog.source %q not supported (json, postgres, redis)", c.Catalog.Source)
	}

	switch c.Behavior.Source {
	case "", BehaviorNone:
	case BehaviorRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for redis behavior source")
		}
	case BehaviorPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for postgres behavior source")
		}
	default:
		return fmt.Errorf("behavior.source %q not supported (none, redis, postgres)", c.Behavior.Source)
	}
	return nil
}
