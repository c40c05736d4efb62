package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	Auth        Auth
	RateLimit   RateLimit
	Audit       Audit

	// optional YAML refund policy document, see LoadPolicy
	PolicyFile string `env:"REFUND_POLICY_FILE"`

	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
	Storage   Storage   `envPrefix:"S3_"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
}

func (p Paypal) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}

type Storage struct {
	Bucket     string        `env:"BUCKET"`
	Region     string        `env:"REGION" envDefault:"us-east-1"`
	Endpoint   string        `env:"ENDPOINT"`
	AccessKey  string        `env:"ACCESS_KEY"`
	SecretKey  string        `env:"SECRET_KEY"`
	PresignTTL time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`
}

type Database struct {
	Driver       string `env:"DATABASE_DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	URL          string `env:"DATABASE_URL" envDefault:"storefront.db"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns int    `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"10"`
}

type Auth struct {
	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET"`
	AdminTokenTTL  time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
}

type RateLimit struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
}

type Audit struct {
	Sink         string        `env:"AUDIT_SINK" envDefault:"log"` // log, db, kafka, redis
	Timeout      time.Duration `env:"AUDIT_TIMEOUT" envDefault:"2s"`
	KafkaBrokers []string      `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string        `env:"AUDIT_KAFKA_TOPIC" envDefault:"storefront.audit"`
	RedisURL     string        `env:"AUDIT_REDIS_URL" envDefault:"localhost:6379"`
	RedisStream  string        `env:"AUDIT_REDIS_STREAM" envDefault:"storefront:audit"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsDevelopment() bool {
	return e.Name == "development"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
