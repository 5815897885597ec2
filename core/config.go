package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		SessionTTL      time.Duration
		AdminSessionTTL time.Duration
		ChatRateLimit   int
		ChatRateWindow  time.Duration
		MaxUploadSize   int64
	}

	DatabaseConfig struct {
		Engine         DBEngine
		URL            string
		Name           string
		ConnectTimeout time.Duration
		Migrate        bool
	}

	GeminiConfig struct {
		APIKey    string
		BaseURL   string
		Model     string
		Timeout   time.Duration
		RetryWait time.Duration
	}

	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		SecretKey    string
		RollbarToken string
		RedisURL     string

		Server   ServerConfig
		Database DatabaseConfig
		Gemini   GeminiConfig
	}
)

// IsProd reports whether the app runs in the production environment.
func (c *Config) IsProd() bool {
	return c.Env == "PROD"
}

// NewConfig loads the app configuration from defaults, `config/.env.<env>` and the environment.
// Environment variables are prefixed with the env name, eg: PROD_SECRETKEY, PROD_DATABASE_URL.
func NewConfig() *Config {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CPGS Hub")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "v9l3@qm-c2p#gs0hub!d2e8w$r)xk4n7^fz1(u5+yt6ao")
	v.SetDefault("rollbar.token", "")
	v.SetDefault("redis.url", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionTTL", 7*24*time.Hour)
	v.SetDefault("server.adminSessionTTL", 24*time.Hour)
	v.SetDefault("server.chatRateLimit", 20)
	v.SetDefault("server.chatRateWindow", time.Minute)
	v.SetDefault("server.maxUploadSize", int64(10<<20))

	v.SetDefault("database.engine", string(EngineMongo))
	v.SetDefault("database.url", "mongodb://localhost:27017")
	v.SetDefault("database.name", "cpgs_hub")
	v.SetDefault("database.connectTimeout", 10*time.Second)
	v.SetDefault("database.migrate", true)

	v.SetDefault("gemini.apiKey", "")
	v.SetDefault("gemini.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 20*time.Second)
	v.SetDefault("gemini.retryWait", 500*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		loadDotEnv(filepath.Join(wd, "config", ".env."+strings.ToLower(env)))
	}
	v.AutomaticEnv()

	return &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbar.token"),
		RedisURL:     v.GetString("redis.url"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionTTL:      v.GetDuration("server.sessionTTL"),
			AdminSessionTTL: v.GetDuration("server.adminSessionTTL"),
			ChatRateLimit:   v.GetInt("server.chatRateLimit"),
			ChatRateWindow:  v.GetDuration("server.chatRateWindow"),
			MaxUploadSize:   v.GetInt64("server.maxUploadSize"),
		},
		Database: DatabaseConfig{
			Engine:         DBEngine(strings.ToLower(v.GetString("database.engine"))),
			URL:            v.GetString("database.url"),
			Name:           v.GetString("database.name"),
			ConnectTimeout: v.GetDuration("database.connectTimeout"),
			Migrate:        v.GetBool("database.migrate"),
		},
		Gemini: GeminiConfig{
			APIKey:    v.GetString("gemini.apiKey"),
			BaseURL:   v.GetString("gemini.baseURL"),
			Model:     v.GetString("gemini.model"),
			Timeout:   v.GetDuration("gemini.timeout"),
			RetryWait: v.GetDuration("gemini.retryWait"),
		},
	}
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			log.Fatalf("config.godotenv(%s): %v", path, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", path, err)
	}
}
