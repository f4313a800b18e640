package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leofalp/cllm/providers/memory"
)

// DefaultKeyPrefix namespaces the collection keys.
const DefaultKeyPrefix = "cllm:memory:"

// Container is a memory.Container stored under one Redis string key.
type Container struct {
	client redis.UniversalClient
	key    string
}

// New returns a container for key on client.
func New(client redis.UniversalClient, key string) *Container {
	return &Container{client: client, key: key}
}

var _ memory.Container = (*Container)(nil)

func (c *Container) Name() string { return "redis:" + c.key }

// Load creates the key with an empty collection if absent, then reads it.
func (c *Container) Load(ctx context.Context) ([]byte, error) {
	if err := c.client.SetNX(ctx, c.key, memory.EmptyCollection, 0).Err(); err != nil {
		return nil, fmt.Errorf("init %s: %w", c.key, err)
	}
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return memory.EmptyCollection, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}
	return data, nil
}

// Store overwrites the key. A single SET is atomic for readers.
func (c *Container) Store(ctx context.Context, data []byte) error {
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

// Options configures Connect.
type Options struct {
	// URL is a redis:// or rediss:// connection string.
	URL            string
	ConnectTimeout time.Duration
}

// Connect parses the URL, pings the server and returns the client.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
