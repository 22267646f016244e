package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort   int
	PublicOrigin string
	SecureCookie bool

	// StoreBackend selects the remote document store: gorm, firestore or memory.
	StoreBackend string
	DBDriver     string
	DatabaseURL  string

	FirestoreProject     string
	FirestoreCredentials string

	// LocalStore selects where session carts live: gorm, redis or memory.
	LocalStore     string
	LocalStorePath string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	JWTAccessSecret []byte
	AccessTTL       time.Duration
	AdminAccounts   map[string]string
	AdminAllowList  []string

	KafkaBrokers []string
	KafkaTopic   string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	ResyncInterval time.Duration
	SessionIdleTTL time.Duration
	CheckoutRPS    float64
	CheckoutBurst  int
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort:   EnvIntDefault("SERVER_PORT", 8080),
		PublicOrigin: os.Getenv("PUBLIC_ORIGIN"),
		SecureCookie: EnvDefault("SECURE_COOKIES", "false") == "true",

		StoreBackend: EnvDefault("STORE_BACKEND", "gorm"),
		DBDriver:     EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		FirestoreProject:     os.Getenv("FIRESTORE_PROJECT"),
		FirestoreCredentials: os.Getenv("FIRESTORE_CREDENTIALS"),

		LocalStore:     EnvDefault("LOCAL_STORE", "gorm"),
		LocalStorePath: EnvDefault("LOCAL_STORE_PATH", "storefront-local.db"),
		RedisAddr:      EnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        EnvIntDefault("REDIS_DB", 0),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:       EnvDurationDefault("ACCESS_TTL", 12*time.Hour),
		AdminAccounts:   Pairs(os.Getenv("ADMIN_ACCOUNTS")),
		AdminAllowList:  CSV(os.Getenv("ADMIN_EMAILS")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "storefront.documents"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		ResyncInterval: EnvDurationDefault("RESYNC_INTERVAL", 30*time.Second),
		SessionIdleTTL: EnvDurationDefault("SESSION_IDLE_TTL", 2*time.Hour),
		CheckoutRPS:    EnvFloatDefault("CHECKOUT_RPS", 0.5),
		CheckoutBurst:  EnvIntDefault("CHECKOUT_BURST", 3),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Pairs parses "k1=v1,k2=v2". Entries without '=' are skipped.
func Pairs(v string) map[string]string {
	out := map[string]string{}
	for _, p := range CSV(v) {
		k, val, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(val)
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
