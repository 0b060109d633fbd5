package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppPort       = "8080"
	defaultGRPCPort      = "9090"
	defaultAppEnv        = "local"
	defaultAWSRegion     = "us-east-1"
	defaultProductsTable = "products"
	defaultStockTable    = "stock"
	defaultRecordStore   = "dynamodb"
	defaultQueueDriver   = "sqs"
	defaultNotifyDriver  = "sns"
	defaultDatabaseDrv   = "sqlite"
	defaultSQLiteDSN     = "shopfront.db"
	defaultRedisAddr     = "localhost:6379"
	defaultUploadTTL     = 300 * time.Second
	defaultBatchSize     = 5
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources win. Safe to call many times; only the first call reads.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":             defaultAppEnv,
		"APP_PORT":            defaultAppPort,
		"GRPC_PORT":           defaultGRPCPort,
		"AWS_REGION":          defaultAWSRegion,
		"PRODUCTS_TABLE_NAME": defaultProductsTable,
		"STOCK_TABLE_NAME":    defaultStockTable,
		"RECORD_STORE":        defaultRecordStore,
		"QUEUE_DRIVER":        defaultQueueDriver,
		"NOTIFY_DRIVER":       defaultNotifyDriver,
		"DB_DRIVER":           defaultDatabaseDrv,
		"REDIS_ADDR":          defaultRedisAddr,
		"STORAGE_DISK":        "s3",
		"IMPORT_REQUIRE_AUTH": "true",
	}
}

// ── App ──────────────────────────────────────────────────────────────────────

func AppEnv() string   { _ = Load(); return get("APP_ENV", defaultAppEnv) }
func AppPort() string  { _ = Load(); return get("APP_PORT", defaultAppPort) }
func GRPCPort() string { _ = Load(); return get("GRPC_PORT", defaultGRPCPort) }

// ── AWS ──────────────────────────────────────────────────────────────────────

func AWSRegion() string { _ = Load(); return get("AWS_REGION", defaultAWSRegion) }

// AWSEndpoint overrides every AWS service endpoint (LocalStack, MinIO).
func AWSEndpoint() string { _ = Load(); return get("AWS_ENDPOINT", "") }
func AWSKey() string      { _ = Load(); return get("AWS_KEY", "") }
func AWSSecret() string   { _ = Load(); return get("AWS_SECRET", "") }

// ── Record store ─────────────────────────────────────────────────────────────

func ProductsTable() string { _ = Load(); return get("PRODUCTS_TABLE_NAME", defaultProductsTable) }
func StockTable() string    { _ = Load(); return get("STOCK_TABLE_NAME", defaultStockTable) }

// RecordStoreDriver is one of "dynamodb", "sql" or "memory".
func RecordStoreDriver() string {
	_ = Load()

	driver := strings.ToLower(get("RECORD_STORE", defaultRecordStore))
	switch driver {
	case "dynamodb", "sql", "memory":
		return driver
	default:
		return defaultRecordStore
	}
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDrv))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDrv
	}
}

func DatabaseDSN() string {
	_ = Load()
	return get("DATABASE_DSN", defaultSQLiteDSN)
}

// ── Import pipeline ──────────────────────────────────────────────────────────

// ImportBucket is the bucket that receives uploaded CSV files.
func ImportBucket() string { _ = Load(); return get("BUCKET_NAME", "") }

func StorageDisk() string      { _ = Load(); return get("STORAGE_DISK", "s3") }
func StorageLocalRoot() string { _ = Load(); return get("STORAGE_LOCAL_ROOT", "storage") }
func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:"+AppPort()+"/storage")
}

// UploadURLTTL is how long a presigned upload URL stays valid.
func UploadURLTTL() time.Duration {
	_ = Load()
	return duration("UPLOAD_URL_TTL", defaultUploadTTL)
}

func ImportRequireAuth() bool {
	_ = Load()
	b, err := strconv.ParseBool(get("IMPORT_REQUIRE_AUTH", "true"))
	return err != nil || b
}

// ── Queue ────────────────────────────────────────────────────────────────────

// QueueDriver is one of "sqs", "redis" or "memory".
func QueueDriver() string {
	_ = Load()

	driver := strings.ToLower(get("QUEUE_DRIVER", defaultQueueDriver))
	switch driver {
	case "sqs", "redis", "memory":
		return driver
	default:
		return defaultQueueDriver
	}
}

func QueueURL() string       { _ = Load(); return get("SQS_QUEUE_URL", "") }
func QueueRedisKey() string  { _ = Load(); return get("QUEUE_REDIS_KEY", "shopfront:catalog-items") }
func RedisAddr() string      { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string  { _ = Load(); return get("REDIS_PASSWORD", "") }
func QueueBatchSize() int    { _ = Load(); return integer("QUEUE_BATCH_SIZE", defaultBatchSize) }
func QueueWorkers() int      { _ = Load(); return integer("QUEUE_WORKERS", 2) }
func QueueWaitTime() int32   { _ = Load(); return int32(integer("QUEUE_WAIT_SECONDS", 10)) }

// ── Notifications ────────────────────────────────────────────────────────────

// NotificationDriver is one of "sns", "webhook" or "log".
func NotificationDriver() string {
	_ = Load()

	driver := strings.ToLower(get("NOTIFY_DRIVER", defaultNotifyDriver))
	switch driver {
	case "sns", "webhook", "log":
		return driver
	default:
		return defaultNotifyDriver
	}
}

func TopicARN() string   { _ = Load(); return get("SNS_TOPIC_ARN", "") }
func WebhookURL() string { _ = Load(); return get("NOTIFY_WEBHOOK_URL", "") }

// ── HTTP ─────────────────────────────────────────────────────────────────────

// CORSAllowedOrigins is a comma separated list; "*" allows every origin.
func CORSAllowedOrigins() []string {
	_ = Load()
	return list("CORS_ALLOWED_ORIGINS", "*")
}

// AuthRateLimit is the number of credential checks one client may make per
// minute.
func AuthRateLimit() int { _ = Load(); return integer("AUTH_RATE_LIMIT", 60) }

// ── Logging ──────────────────────────────────────────────────────────────────

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDatabase() string   { _ = Load(); return get("LOG_MONGO_DB", "shopfront") }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "logs") }

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(os.Environ(), loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitPair(line)
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// mergeEnviron overlays KEY=value pairs (as returned by os.Environ).
// Keys are upper-cased like every other source, so lookups are case-insensitive.
func mergeEnviron(environ []string, out map[string]string) {
	for _, kv := range environ {
		key, value, ok := splitPair(kv)
		if !ok {
			continue
		}
		out[key] = value
	}
}

func splitPair(line string) (string, string, bool) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return "", "", false
	}
	key := strings.ToUpper(strings.TrimSpace(line[:idx]))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func integer(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// duration accepts Go durations ("5m") or plain seconds ("300").
func duration(key string, fallback time.Duration) time.Duration {
	raw := get(key, "")
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}

func list(key, fallback string) []string {
	var out []string
	for _, part := range strings.Split(get(key, fallback), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Get reads any config key by name with an optional fallback.
// Keys are matched upper-cased.
func Get(key, fallback string) string {
	_ = Load()
	return get(strings.ToUpper(key), fallback)
}

// Set overrides a key for the lifetime of the process. Intended for tests and
// CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
