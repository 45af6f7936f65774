package ops

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"ledger/internal/admission"
	"ledger/internal/portfolio"
	"ledger/internal/reference"
	"ledger/internal/report"
	"ledger/pkg/conn"
	"ledger/pkg/exception"
	"ledger/pkg/kafka"
	"ledger/pkg/pricecache"
)

const (
	EnvDatabaseDriver = "LEDGER_DATABASE_DRIVER"
	EnvDatabaseDSN    = "LEDGER_DATABASE_DSN"
	EnvHTTPAddr       = "LEDGER_HTTP_ADDR"
	EnvKafkaBrokers   = "LEDGER_KAFKA_BROKERS"
	EnvRedisAddr      = "LEDGER_REDIS_ADDR"
	EnvRedisPassword  = "LEDGER_REDIS_PASSWORD"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultKafkaTopic = "ledger.trades"
	defaultQueueSize  = 1024
)

// Duration accepts "1m30s" style strings or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(exception.ErrInvalidArgument, "duration %q", s)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Wrapf(exception.ErrInvalidArgument, "duration %s", b)
	}
	*d = Duration(n)
	return nil
}

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Database  conn.Option       `json:"database"`
	HTTP      HTTPConfig        `json:"http"`
	Kafka     KafkaConfig       `json:"kafka"`
	Redis     RedisConfig       `json:"redis"`
	Report    ReportConfig      `json:"report"`
	Profiling ProfilingConfig   `json:"profiling"`
	Admission admission.Config  `json:"admission"`
	Registry  RegistryConfig    `json:"registry"`
	Prices    map[string]string `json:"prices"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `json:"addr"`
	// Mode is the gin mode: debug, release or test.
	Mode string `json:"mode"`
}

// KafkaConfig configures trade event publishing. Empty brokers disable it.
type KafkaConfig struct {
	Brokers      []string `json:"brokers"`
	Topic        string   `json:"topic"`
	BatchTimeout Duration `json:"batchTimeout"`
	QueueSize    int      `json:"queueSize"`
}

// RedisConfig configures the external price source. An empty addr disables it.
type RedisConfig struct {
	Addr      string   `json:"addr"`
	Password  string   `json:"password"`
	DB        int      `json:"db"`
	KeyPrefix string   `json:"keyPrefix"`
	TTL       Duration `json:"ttl"`
}

// ReportConfig configures the star-schema job.
type ReportConfig struct {
	Interval      Duration `json:"interval"`
	Lag           Duration `json:"lag"`
	BatchSize     int      `json:"batchSize"`
	CheckpointDir string   `json:"checkpointDir"`
}

// ProfilingConfig configures continuous profiling. An empty server address disables it.
type ProfilingConfig struct {
	ServerAddress   string            `json:"serverAddress"`
	ApplicationName string            `json:"applicationName"`
	Tags            map[string]string `json:"tags"`
}

// RegistryConfig lists the assets and pairs seeded at start-up.
type RegistryConfig struct {
	Assets []reference.AssetSpec `json:"assets"`
	Pairs  []reference.PairSpec  `json:"pairs"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Database     conn.Option
	HTTP         HTTPConfig
	Kafka        kafka.Option
	KafkaEnabled bool
	QueueSize    int
	Redis        pricecache.Option
	RedisEnabled bool
	Report       report.Config
	Profiling    ProfilingConfig
	Admission    admission.Config
	Catalog      *reference.Catalog
	Prices       portfolio.StaticPrices
}

// LoadDotEnv loads the given .env files into the environment. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "load env file %s", f)
		}
	}
	return nil
}

// Load reads a JSON config file, applies LEDGER_* environment overrides and resolves it. An empty path
// starts from defaults.
func Load(path string) (Loaded, error) {
	var cfg FileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Loaded{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Loaded{}, errors.Wrapf(err, "decode config %s", path)
		}
	}
	applyEnv(&cfg)
	return resolve(cfg)
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv(EnvDatabaseDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		cfg.Database.ConnString = v
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Redis.Password = v
	}
}

func resolve(cfg FileConfig) (Loaded, error) {
	catalog, err := buildCatalog(cfg.Registry)
	if err != nil {
		return Loaded{}, err
	}
	prices, err := resolvePrices(cfg.Prices)
	if err != nil {
		return Loaded{}, err
	}
	if cfg.Admission.MaxOrderAmount.IsNegative() || cfg.Admission.MaxOrderNotional.IsNegative() {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "admission limits must be >= 0")
	}
	if cfg.Report.BatchSize < 0 {
		return Loaded{}, errors.Wrap(exception.ErrInvalidArgument, "report batchSize must be >= 0")
	}
	switch cfg.HTTP.Mode {
	case "", "debug", "release", "test":
	default:
		return Loaded{}, errors.Wrapf(exception.ErrInvalidArgument, "http mode %q", cfg.HTTP.Mode)
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = defaultKafkaTopic
	}
	if cfg.Kafka.QueueSize <= 0 {
		cfg.Kafka.QueueSize = defaultQueueSize
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = conn.DriverPostgres
	}

	return Loaded{
		Database: cfg.Database,
		HTTP:     cfg.HTTP,
		Kafka: kafka.Option{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: time.Duration(cfg.Kafka.BatchTimeout),
		},
		KafkaEnabled: len(cfg.Kafka.Brokers) > 0,
		QueueSize:    cfg.Kafka.QueueSize,
		Redis: pricecache.Option{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       time.Duration(cfg.Redis.TTL),
		},
		RedisEnabled: cfg.Redis.Addr != "",
		Report: report.Config{
			Interval:      time.Duration(cfg.Report.Interval),
			Lag:           time.Duration(cfg.Report.Lag),
			BatchSize:     cfg.Report.BatchSize,
			CheckpointDir: cfg.Report.CheckpointDir,
		},
		Profiling: cfg.Profiling,
		Admission: cfg.Admission,
		Catalog:   catalog,
		Prices:    prices,
	}, nil
}

func buildCatalog(cfg RegistryConfig) (*reference.Catalog, error) {
	c := reference.NewCatalog()
	for _, a := range cfg.Assets {
		if err := c.AddAsset(a); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.Pairs {
		if err := c.AddPair(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func resolvePrices(raw map[string]string) (portfolio.StaticPrices, error) {
	prices := make(portfolio.StaticPrices, len(raw))
	for symbol, s := range raw {
		p, err := decimal.NewFromString(s)
		if err != nil || !p.IsPositive() {
			return nil, errors.Wrapf(exception.ErrInvalidArgument, "price of %s: %q", symbol, s)
		}
		prices[strings.ToUpper(symbol)] = p
	}
	return prices, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

