package conn

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger/pkg/exception"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 5
	defaultConnMaxIdleTime = 60 * time.Second
)

// Option defines connection options for the ledger database.
type Option struct {
	Driver       string            `json:"driver"`
	Host         string            `json:"host"`
	Port         int               `json:"port"`
	User         string            `json:"user"`
	Password     string            `json:"password"`
	Database     string            `json:"database"`
	SSLMode      string            `json:"sslMode"`
	Params       map[string]string `json:"params"`
	ConnString   string            `json:"dsn"`
	MaxOpenConns int               `json:"maxOpenConns"`
	MaxIdleConns int               `json:"maxIdleConns"`
	Config       *gorm.Config      `json:"-"`
}

// Client wraps a database connection pool.
type Client struct {
	opt Option
	db  *gorm.DB
}

// New creates a database client from the provided options.
func New(option Option) (*Client, error) {
	dialector, err := option.dialector()
	if err != nil {
		return nil, err
	}

	config := option.Config
	if config == nil {
		config = &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", option.driver())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}

	if option.driver() == DriverSQLite {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(orDefault(option.MaxOpenConns, defaultMaxOpenConns))
		sqlDB.SetMaxIdleConns(orDefault(option.MaxIdleConns, defaultMaxIdleConns))
		sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	return &Client{opt: option, db: db}, nil
}

// NewSQLite opens a SQLite database at path. ":memory:" gives a private in-memory database.
func NewSQLite(path string) (*Client, error) {
	return New(Option{
		Driver:     DriverSQLite,
		ConnString: path,
		Config:     &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	})
}

// DB returns the underlying gorm.DB instance.
func (c *Client) DB() *gorm.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Migrate creates or updates the tables of the given models.
func (c *Client) Migrate(models ...any) error {
	if c == nil || c.db == nil {
		return exception.ErrNilInstance
	}
	if err := c.db.AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt Option) driver() string {
	if opt.Driver == "" {
		return DriverPostgres
	}
	return opt.Driver
}

func (opt Option) dialector() (gorm.Dialector, error) {
	switch opt.driver() {
	case DriverPostgres:
		return postgres.Open(opt.dsn()), nil
	case DriverSQLite:
		if opt.ConnString == "" {
			return nil, exception.ErrEmptyDSN
		}
		return openSQLite(opt.ConnString), nil
	default:
		return nil, errors.Wrapf(exception.ErrUnsupportedDriver, "driver: %s", opt.Driver)
	}
}

// dsn builds a postgres URL from the option. A raw ConnString is used as is.
func (opt Option) dsn() string {
	if opt.ConnString != "" {
		return opt.ConnString
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", orString(opt.Host, defaultPostgresHost), orDefault(opt.Port, defaultPostgresPort)),
	}
	switch {
	case opt.User == "":
	case opt.Password == "":
		u.User = url.User(opt.User)
	default:
		u.User = url.UserPassword(opt.User, opt.Password)
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	params := url.Values{"sslmode": {orString(opt.SSLMode, defaultPostgresSSLMode)}}
	for k, v := range opt.Params {
		if k != "" {
			params.Set(k, v)
		}
	}
	u.RawQuery = params.Encode()
	return u.String()
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
