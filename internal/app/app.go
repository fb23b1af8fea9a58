package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/markdave123-py/chatters/internal/config"
	"github.com/markdave123-py/chatters/internal/core"
	"github.com/markdave123-py/chatters/internal/core/attachments"
	db "github.com/markdave123-py/chatters/internal/core/database"
	"github.com/markdave123-py/chatters/internal/core/kvstore"
	"github.com/markdave123-py/chatters/internal/core/llm"
	objectclient "github.com/markdave123-py/chatters/internal/core/object-client"
	"github.com/markdave123-py/chatters/internal/queue"
	"github.com/markdave123-py/chatters/internal/services"
)

// Core is everything both the HTTP API and the CLI need: storage, the model
// provider and the services built on them.
type Core struct {
	Config    *config.Config
	Store     core.KVStore
	LLM       core.LLMProvider
	Publisher core.EventPublisher
	Redis     *redis.Client

	Stores      *services.ProfileStores
	Coach       *services.CoachService
	Attachments *attachments.Reader

	closers []func() error
}

func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	initCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	c := &Core{Config: cfg}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	if cfg.RedisAddr != "" && (cfg.StoreDriver == "redis" || cfg.RateLimit.Enabled) {
		rdb, err := kvstore.NewRedisClient(initCtx, cfg)
		if err != nil {
			return nil, err
		}
		c.Redis = rdb
		c.closers = append(c.closers, rdb.Close)
		log.Info("Redis connected.")
	}

	store, err := OpenStore(initCtx, cfg, c.Redis)
	if err != nil {
		return nil, err
	}
	c.Store = store
	c.closers = append(c.closers, store.Close)
	log.WithField("driver", cfg.StoreDriver).Info("Store initialized and ready.")

	provider, err := NewProvider(initCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the model provider, %w", err)
	}
	c.LLM = provider
	if cl, ok := provider.(interface{ Close() error }); ok {
		c.closers = append(c.closers, cl.Close)
	}

	c.Publisher = NewPublisher(cfg)
	c.closers = append(c.closers, c.Publisher.Close)

	c.Stores = services.NewProfileStores(c.Store, services.StoreOptions{
		HistoryLimit: cfg.HistoryLimit,
		Publisher:    c.Publisher,
		Topic:        cfg.HistoryQueue,
	})
	gen, practice := cfg.Models()
	c.Coach = services.NewCoachService(c.LLM, services.CoachOptions{
		GenModel:      gen,
		PracticeModel: practice,
		Timeout:       cfg.ModelTimeout,
	})
	c.Attachments = attachments.NewReader(attachments.NewDocconvExtractor(false), cfg.AttachmentMaxBytes, cfg.AttachmentMaxChars)

	ok = true
	return c, nil
}

// OpenStore picks the KV backend named by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (core.KVStore, error) {
	switch cfg.StoreDriver {
	case "memory":
		return kvstore.NewMemoryStore(), nil
	case "sqlite":
		return db.OpenSQLite(ctx, cfg.SqlitePath)
	case "postgres":
		return db.OpenPostgres(ctx, cfg)
	case "redis":
		if rdb == nil {
			return nil, errors.New("redis store needs REDIS_ADDR")
		}
		return kvstore.NewRedisStore(rdb, cfg.RedisPrefix, false), nil
	case "s3":
		client, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return objectclient.NewObjectStore(client, cfg.BucketName, cfg.S3Prefix), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

func NewProvider(ctx context.Context, cfg *config.Config) (core.LLMProvider, error) {
	gen, _ := cfg.Models()
	switch cfg.AIProvider {
	case "gemini":
		return llm.NewGeminiLLM(ctx, cfg.AIAPIKey, gen)
	case "openai":
		return llm.NewOpenAILLM(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, gen), nil
	case "dryrun":
		return llm.NewDryRun(), nil
	}
	return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
}

// NewPublisher connects to RabbitMQ when AMQP_URL is set. A broker that is
// down at startup only disables history events.
func NewPublisher(cfg *config.Config) core.EventPublisher {
	if cfg.AMQPURL == "" {
		return queue.Noop{}
	}
	pub, err := queue.NewAMQPPublisher(cfg.AMQPURL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq unavailable, history events disabled")
		return queue.Noop{}
	}
	log.WithField("queue", cfg.HistoryQueue).Info("Publishing history events.")
	return pub
}

// Close releases resources in reverse order of acquisition.
func (c *Core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			log.WithError(err).Warn("close")
		}
	}
	c.closers = nil
}

type App struct {
	*Core
	Server *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	c, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &App{Core: c, Server: NewServer(cfg, c)}, nil
}
