package pricecache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"ledger/pkg/exception"
)

const defaultPrefix = "price:"

// Option configures the redis connection.
type Option struct {
	Addr      string        `json:"addr"`
	Password  string        `json:"password"`
	DB        int           `json:"db"`
	KeyPrefix string        `json:"keyPrefix"`
	TTL       time.Duration `json:"ttl"`
}

// Cache reads and writes asset prices stored as decimal strings under <prefix><SYMBOL>.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to redis and pings it.
func New(ctx context.Context, opt Option) (*Cache, error) {
	if opt.Addr == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "redis addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opt.Addr,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
		PoolTimeout:  4 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", opt.Addr)
	}

	logs.Infof("redis connected, addr: %s, db: %d", opt.Addr, opt.DB)
	return NewWithClient(client, opt), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, opt Option) *Cache {
	prefix := opt.KeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: opt.TTL}
}

// Price returns the cached price of symbol. A missing key is a miss, not an error.
func (c *Cache) Price(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(symbol)).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, errors.Wrapf(err, "get price %s", symbol)
	}

	p, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, errors.Wrapf(err, "parse price %s", symbol).With("raw", raw)
	}
	return p, true, nil
}

// SetPrice stores the price of symbol with the configured TTL.
func (c *Cache) SetPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return errors.Wrapf(exception.ErrInvalidArgument, "price of %s: %s", symbol, price)
	}
	if err := c.client.Set(ctx, c.key(symbol), price.String(), c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "set price %s", symbol)
	}
	return nil
}

func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) key(symbol string) string {
	return c.prefix + strings.ToUpper(strings.TrimSpace(symbol))
}
