package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"francoggm/vnpay-go-redis/internal/vnpay"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  Server  `mapstructure:"server"`
	Cache   Cache   `mapstructure:"cache"`
	VNPay   VNPay   `mapstructure:"vnpay"`
	Workers Workers `mapstructure:"workers"`
	Logs    Logs    `mapstructure:"logs"`
	Metrics Metrics `mapstructure:"metrics"`
	Kafka   Kafka   `mapstructure:"kafka"`
	Webhook Webhook `mapstructure:"webhook"`
}

type Server struct {
	Port string `mapstructure:"port"`
	// PublicURL is the scheme and host the gateway redirects buyers to. When
	// empty it is derived from the incoming request.
	PublicURL string `mapstructure:"public-url"`
}

type Cache struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool-size"`
}

type VNPay struct {
	APIURL           string        `mapstructure:"api-url"`
	TmnCode          string        `mapstructure:"tmn-code"`
	HashSecret       string        `mapstructure:"hash-secret"`
	ReturnPath       string        `mapstructure:"return-path"`
	IPNPath          string        `mapstructure:"ipn-path"`
	FallbackRedirect string        `mapstructure:"fallback-redirect"`
	Locale           string        `mapstructure:"locale"`
	CurrCode         string        `mapstructure:"curr-code"`
	OrderType        string        `mapstructure:"order-type"`
	Timezone         string        `mapstructure:"timezone"`
	ExpireAfter      time.Duration `mapstructure:"expire-after"`
	CorrelationTTL   time.Duration `mapstructure:"correlation-ttl"`
	ResponseTTL      time.Duration `mapstructure:"response-ttl"`
	QueryTimeout     time.Duration `mapstructure:"query-timeout"`
	QueryRPS         float64       `mapstructure:"query-rps"`
	QueryBurst       int           `mapstructure:"query-burst"`
	// QueryIP is sent as vnp_IpAddr by background status queries.
	QueryIP string `mapstructure:"query-ip"`
}

type Workers struct {
	ReconcileCount      int `mapstructure:"reconcile-count"`
	ReconcileBufferSize int `mapstructure:"reconcile-buffer-size"`
}

type Logs struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

type Metrics struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

type KafkaWriter struct {
	BatchSize      int `mapstructure:"batch-size"`
	BatchTimeoutMs int `mapstructure:"batch-timeout-ms"`
}

type Kafka struct {
	// Brokers is a comma separated list. Publishing is off when empty.
	Brokers string      `mapstructure:"brokers"`
	Topic   string      `mapstructure:"topic"`
	Writer  KafkaWriter `mapstructure:"writer"`
}

type Webhook struct {
	// URL receives every IPN response. Forwarding is off when empty.
	URL       string `mapstructure:"url"`
	TimeoutMs int    `mapstructure:"timeout-ms"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.public-url", "")

	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", "6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.pool-size", 20)

	v.SetDefault("vnpay.api-url", "https://sandbox.vnpayment.vn")
	v.SetDefault("vnpay.tmn-code", "")
	v.SetDefault("vnpay.hash-secret", "")
	v.SetDefault("vnpay.return-path", "/vnpay/return")
	v.SetDefault("vnpay.ipn-path", "/vnpay/ipn")
	v.SetDefault("vnpay.fallback-redirect", "/")
	v.SetDefault("vnpay.locale", "vn")
	v.SetDefault("vnpay.curr-code", "VND")
	v.SetDefault("vnpay.order-type", "other")
	v.SetDefault("vnpay.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("vnpay.expire-after", "12h")
	v.SetDefault("vnpay.correlation-ttl", "10m")
	v.SetDefault("vnpay.response-ttl", "24h")
	v.SetDefault("vnpay.query-timeout", "10s")
	v.SetDefault("vnpay.query-ip", "127.0.0.1")
	v.SetDefault("vnpay.query-rps", 0)
	v.SetDefault("vnpay.query-burst", 1)

	v.SetDefault("workers.reconcile-count", 2)
	v.SetDefault("workers.reconcile-buffer-size", 100)

	v.SetDefault("logs.url", "")
	v.SetDefault("logs.level", "info")

	v.SetDefault("metrics.url", "")
	v.SetDefault("metrics.interval-ms", 10_000)
	v.SetDefault("metrics.common-labels", "")

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "vnpay-callbacks")
	v.SetDefault("kafka.writer.batch-size", 100)
	v.SetDefault("kafka.writer.batch-timeout-ms", 100)

	v.SetDefault("webhook.url", "")
	v.SetDefault("webhook.timeout-ms", 10_000)
}

// LoadConfig reads config.yaml from path when present and lets environment
// variables override any key, e.g. VNPAY_HASH_SECRET for vnpay.hash-secret.
// A .env file in path is loaded into the environment first.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func MustLoadConfig(path string) *Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return config
}

// Location resolves the gateway time zone, falling back to the local zone
// when the name is unknown.
func (c VNPay) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}

	return location
}

func (c VNPay) Options() vnpay.Options {
	return vnpay.Options{
		APIURL:         c.APIURL,
		TmnCode:        c.TmnCode,
		HashSecret:     c.HashSecret,
		ReturnPath:     c.ReturnPath,
		Locale:         c.Locale,
		CurrCode:       c.CurrCode,
		OrderType:      c.OrderType,
		ExpireAfter:    c.ExpireAfter,
		CorrelationTTL: c.CorrelationTTL,
		QueryTimeout:   c.QueryTimeout,
		Location:       c.Location(),
	}
}

func (c Kafka) BrokerList() []string {
	var brokers []string
	for _, broker := range strings.Split(c.Brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return brokers
}
