package conn

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/pkg/exception"
)

func TestOptionDSN(t *testing.T) {
	testCases := []struct {
		desc     string
		opt      Option
		expected string
	}{
		{
			"defaults",
			Option{},
			"postgres://localhost:5432?sslmode=disable",
		},
		{
			"credentials and database",
			Option{Host: "db", Port: 6543, User: "ledger", Password: "p@ss", Database: "wallets"},
			"postgres://ledger:p%40ss@db:6543/wallets?sslmode=disable",
		},
		{
			"params",
			Option{User: "ledger", SSLMode: "require", Params: map[string]string{"application_name": "ledgerd", "": "x"}},
			"postgres://ledger@localhost:5432?application_name=ledgerd&sslmode=require",
		},
		{
			"raw connection string wins",
			Option{Host: "ignored", ConnString: "postgres://a@b/c"},
			"postgres://a@b/c",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.opt.dsn())
		})
	}
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(Option{Driver: "oracle"})
	require.ErrorIs(t, err, exception.ErrUnsupportedDriver)

	_, err = New(Option{Driver: DriverSQLite})
	require.ErrorIs(t, err, exception.ErrEmptyDSN)
}

func TestSQLiteMigrate(t *testing.T) {
	type sample struct {
		ID   uint `gorm:"primaryKey"`
		Name string
	}

	c, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Migrate(&sample{}))
	require.NoError(t, c.DB().Create(&sample{Name: "btc"}).Error)

	var got sample
	require.NoError(t, c.DB().First(&got).Error)
	assert.Equal(t, "btc", got.Name)
}

func TestSQLiteKeepsDecimalDigits(t *testing.T) {
	type balance struct {
		ID     uint            `gorm:"primaryKey"`
		Amount decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	}

	c, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Migrate(&balance{}))

	for _, v := range []string{
		"0.123456789012345678",
		"99999999999.000000000000000001",
		"12345678901234567890.123456789012345678",
	} {
		want := decimal.RequireFromString(v)
		row := balance{Amount: want}
		require.NoError(t, c.DB().Create(&row).Error)

		var got balance
		require.NoError(t, c.DB().First(&got, row.ID).Error)
		assert.True(t, want.Equal(got.Amount), "want %s, got %s", want, got.Amount)
	}
}
