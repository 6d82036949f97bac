package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Minio    *MinIOCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Db       *PGDBCfg
	Redis    *RedisCfg
	Kafka    *KafkaCfg
	Carrier  *CarrierCfg
	Payment  *PaymentCfg
	Checkout *CheckoutCfg
	Cart     *CartCfg
	Catalog  *CatalogCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для архива чеков
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsURL string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	CartTTL     time.Duration // время жизни сохранённой корзины
	MethodsTTL  time.Duration // время жизни кэша способов доставки перевозчика
}

// CarrierCfg — настройки внешнего API расчёта доставки.
type CarrierCfg struct {
	BaseURL          string
	PublicKey        string
	SecretKey        string
	CarrierFilter    string // подстрока имени перевозчика, регистр не важен
	OriginCountry    string
	OriginPostalCode string
	Timeout          time.Duration
	MaxConcurrent    int
	MaxRetries       int
}

// Enabled сообщает, заданы ли учётные данные перевозчика.
func (c *CarrierCfg) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

// PaymentCfg — настройки внешнего платёжного API.
type PaymentCfg struct {
	BaseURL        string
	SecretKey      string
	PublishableKey string
	Timeout        time.Duration
	ReturnURL      string
	SuccessURL     string
}

func (c *PaymentCfg) Enabled() bool {
	return c.SecretKey != ""
}

type CheckoutCfg struct {
	SessionTTL      time.Duration
	RequestTimeout  time.Duration
	DefaultCurrency string
}

// CatalogCfg — источник данных витрины из CMS (JSON-файл id -> {name, description, image}).
type CatalogCfg struct {
	OverridesFile string
}

type CartCfg struct {
	IdleEvict     time.Duration
	JanitorPeriod time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	carrier, err := loadCarrierCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	payment, err := loadPaymentCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	checkout, err := loadCheckoutCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cart, err := loadCartCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:    minio,
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Db:       db,
		Redis:    redis,
		Kafka:    kafka,
		Carrier:  carrier,
		Payment:  payment,
		Checkout: checkout,
		Cart:     cart,
		Catalog:  &CatalogCfg{OverridesFile: getEnv("CATALOG_OVERRIDES_FILE")},
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "storefront.orders"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "receipts"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost          = "localhost"
		defaultPort          = "5432"
		defaultSSLMode       = "disable"
		defaultMigrationsURL = "file://db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsURL: getEnvOrDefault("MIGRATIONS_URL", defaultMigrationsURL),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultCartTTL      = 30 * 24 * time.Hour
		defaultMethodsTTL   = 10 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	cartTTL, err := parseDurationEnv("CART_TTL", defaultCartTTL)
	if err != nil {
		log.Errorf(err, "invalid CART_TTL")
		return nil, err
	}

	methodsTTL, err := parseDurationEnv("SHIPPING_METHODS_TTL", defaultMethodsTTL)
	if err != nil {
		log.Errorf(err, "invalid SHIPPING_METHODS_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		CartTTL:     cartTTL,
		MethodsTTL:  methodsTTL,
	}, nil
}

func loadCarrierCfg(log logger.Logger) (*CarrierCfg, error) {
	const (
		defaultBaseURL       = "https://panel.sendcloud.sc/api/v2"
		defaultCarrierFilter = "postnl"
		defaultOrigin        = "NL"
		defaultTimeout       = 10 * time.Second
		defaultMaxConcurrent = 8
		defaultMaxRetries    = 2
	)

	timeout, err := parseDurationEnv("CARRIER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid CARRIER_TIMEOUT")
		return nil, err
	}

	maxConcurrent, err := parseIntEnv("CARRIER_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil {
		log.Errorf(err, "invalid CARRIER_MAX_CONCURRENT")
		return nil, err
	}

	maxRetries, err := parseIntEnv("CARRIER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid CARRIER_MAX_RETRIES")
		return nil, err
	}

	c := &CarrierCfg{
		BaseURL:          strings.TrimRight(getEnvOrDefault("CARRIER_API_URL", defaultBaseURL), "/"),
		PublicKey:        getEnv("CARRIER_PUBLIC_KEY"),
		SecretKey:        getEnv("CARRIER_SECRET_KEY"),
		CarrierFilter:    getEnvOrDefault("CARRIER_FILTER", defaultCarrierFilter),
		OriginCountry:    strings.ToUpper(getEnvOrDefault("ORIGIN_COUNTRY", defaultOrigin)),
		OriginPostalCode: getEnv("ORIGIN_POSTAL_CODE"),
		Timeout:          timeout,
		MaxConcurrent:    maxConcurrent,
		MaxRetries:       maxRetries,
	}

	if !c.Enabled() {
		log.Warnf("CARRIER_PUBLIC_KEY/CARRIER_SECRET_KEY are not set, fallback shipping rates will be used")
	}

	return c, nil
}

func loadPaymentCfg(log logger.Logger) (*PaymentCfg, error) {
	const (
		defaultBaseURL    = "https://api.stripe.com/v1"
		defaultTimeout    = 15 * time.Second
		defaultReturnURL  = "http://localhost:3000/checkout/success"
		defaultSuccessURL = "http://localhost:3000/checkout/success"
	)

	timeout, err := parseDurationEnv("PAYMENT_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid PAYMENT_TIMEOUT")
		return nil, err
	}

	c := &PaymentCfg{
		BaseURL:        strings.TrimRight(getEnvOrDefault("PAYMENT_API_URL", defaultBaseURL), "/"),
		SecretKey:      getEnv("PAYMENT_SECRET_KEY"),
		PublishableKey: getEnv("PAYMENT_PUBLISHABLE_KEY"),
		Timeout:        timeout,
		ReturnURL:      getEnvOrDefault("PAYMENT_RETURN_URL", defaultReturnURL),
		SuccessURL:     getEnvOrDefault("CHECKOUT_SUCCESS_URL", defaultSuccessURL),
	}

	if !c.Enabled() {
		log.Warnf("PAYMENT_SECRET_KEY is not set, payment flow is disabled")
	}

	return c, nil
}

func loadCheckoutCfg(log logger.Logger) (*CheckoutCfg, error) {
	const (
		defaultSessionTTL     = time.Hour
		defaultRequestTimeout = 20 * time.Second
		defaultCurrency       = "EUR"
	)

	ttl, err := parseDurationEnv("CHECKOUT_SESSION_TTL", defaultSessionTTL)
	if err != nil {
		log.Errorf(err, "invalid CHECKOUT_SESSION_TTL")
		return nil, err
	}

	reqTimeout, err := parseDurationEnv("CHECKOUT_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		log.Errorf(err, "invalid CHECKOUT_REQUEST_TIMEOUT")
		return nil, err
	}

	return &CheckoutCfg{
		SessionTTL:      ttl,
		RequestTimeout:  reqTimeout,
		DefaultCurrency: strings.ToUpper(getEnvOrDefault("DEFAULT_CURRENCY", defaultCurrency)),
	}, nil
}

func loadCartCfg(log logger.Logger) (*CartCfg, error) {
	const (
		defaultIdleEvict     = 30 * time.Minute
		defaultJanitorPeriod = time.Minute
	)

	idle, err := parseDurationEnv("CART_IDLE_EVICT", defaultIdleEvict)
	if err != nil {
		log.Errorf(err, "invalid CART_IDLE_EVICT")
		return nil, err
	}

	period, err := parseDurationEnv("CART_JANITOR_PERIOD", defaultJanitorPeriod)
	if err != nil {
		log.Errorf(err, "invalid CART_JANITOR_PERIOD")
		return nil, err
	}

	return &CartCfg{IdleEvict: idle, JanitorPeriod: period}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
