// Command homerec 启动首页商品推荐服务。
//
// 启动顺序：
//  1. 加载配置（默认值 -> YAML -> HOMEREC_ 环境变量）并初始化日志
//  2. 加载商品向量；文件缺失或不合法直接退出，不以空库启动
//  3. 打开存储（Redis 或内存）、Postgres（可选）、商品目录与行为数据源
//  4. 构建混合排序器与可选的后处理链
//  5. 启动 HTTP 服务，SIGINT / SIGTERM 时优雅退出
//
//	homerec -config configs/homerec.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rushteam/homerec/behavior"
	"github.com/rushteam/homerec/catalog"
	"github.com/rushteam/homerec/config"
	_ "github.com/rushteam/homerec/config/builders"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/embedding"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/server"
	"github.com/rushteam/homerec/session"
	"github.com/rushteam/homerec/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("HOMEREC_CONFIG"), "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.Error().Err(err).Msg("homerec exited")
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emb, err := embedding.Load(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}
	metrics.EmbeddingRows.Set(float64(emb.Len()))
	logging.Info().Int("rows", emb.Len()).Int("dim", emb.Dim()).Str("format", cfg.Embedding.Format).Msg("embeddings loaded")

	kv, err := store.Open(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer kv.Close()

	var pool *pgxpool.Pool
	if cfg.Postgres.DSN != "" {
		pool, err = pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}

	cat, err := loadCatalog(ctx, cfg, kv, pool)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logging.Info().Int("products", cat.Len()).Str("source", cfg.Catalog.Source).Msg("catalog loaded")
	if cat.Len() == 0 {
		return errors.New("catalog is empty")
	}

	src, err := behaviorSource(cfg, kv, pool)
	if err != nil {
		return err
	}

	ranker := rank.NewHybrid(emb, cat, src)
	ranker.Weights = cfg.Rank.Weights()
	ranker.TopK = cfg.Rank.TopK
	ranker.Overfetch = cfg.Rank.Overfetch
	ranker.BehaviorTimeout = cfg.Behavior.Timeout

	var post *pipeline.Pipeline
	if cfg.Pipeline.Path != "" {
		post, err = config.LoadPipeline(cfg.Pipeline.Path, &pipeline.Resources{Catalog: cat, Store: kv})
		if err != nil {
			return err
		}
		logging.Info().Str("pipeline", post.Name).Int("nodes", len(post.Nodes)).Msg("pipeline loaded")
	}

	svc := &server.Service{
		Ranker:   ranker,
		History:  session.NewHistory(kv, cfg.Session.KeyPrefix, cfg.Session.HistoryLimit),
		Catalog:  cat,
		Pipeline: post,
		Vectors:  emb,
	}
	srv := server.New(svc, server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
		MaxK:            cfg.Server.MaxK,
	})
	if p, ok := kv.(server.Pinger); ok {
		srv.AddProbe("redis", p)
	}
	if pool != nil {
		srv.AddProbe("postgres", pool)
	}

	return srv.ListenAndServe(ctx)
}

func loadCatalog(ctx context.Context, cfg *config.Config, kv core.ListStore, pool *pgxpool.Pool) (*catalog.Memory, error) {
	switch cfg.Catalog.Source {
	case catalog.SourcePostgres:
		return catalog.LoadPostgres(ctx, pool, cfg.Catalog.Query)
	case catalog.SourceRedis:
		hash, ok := kv.(core.KeyValueStore)
		if !ok {
			return nil, fmt.Errorf("store %s does not support hashes", kv.Name())
		}
		return catalog.LoadStore(ctx, hash, cfg.Catalog.HashKey)
	default:
		return catalog.LoadJSON(cfg.Catalog.Path)
	}
}

// behaviorSource 按配置选择行为数据源，远端数据源外包熔断器。
func behaviorSource(cfg *config.Config, kv core.Store, pool *pgxpool.Pool) (core.BehaviorSource, error) {
	var src core.BehaviorSource
	switch cfg.Behavior.Source {
	case config.BehaviorRedis:
		src = behavior.NewStoreSource(kv, cfg.Behavior.KeyPrefix)
	case config.BehaviorPostgres:
		src = behavior.NewPostgres(pool)
	case "", config.BehaviorNone:
		logging.Info().Msg("no behavior source configured, user preference signal disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown behavior source %q", cfg.Behavior.Source)
	}
	if cfg.Behavior.Breaker {
		src = behavior.NewBreaker(src, cfg.Breaker)
	}
	logging.Info().Str("behavior", src.Name()).Bool("breaker", cfg.Behavior.Breaker).Msg("behavior source ready")
	return src, nil
}
