package pricecache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/exception"
)

func TestKey(t *testing.T) {
	c := NewWithClient(nil, Option{})
	assert.Equal(t, "price:BTC", c.key(" btc "))

	c = NewWithClient(nil, Option{KeyPrefix: "ledger:px:"})
	assert.Equal(t, "ledger:px:USDT", c.key("usdt"))
}

func TestNewRequiresAddr(t *testing.T) {
	_, err := New(context.Background(), Option{})
	require.ErrorIs(t, err, exception.ErrInvalidArgument)
}

func TestSetPriceRejectsNonPositive(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewWithClient(client, Option{})
	err := c.SetPrice(context.Background(), "BTC", decimal.Zero)
	require.ErrorIs(t, err, exception.ErrInvalidArgument)
}
