package config

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string
	DevLog  bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// BackendBaseURL is the root of the role-scoped customer/loan backend
	// (e.g. https://api.example.com/api).
	BackendBaseURL  string
	HTTPTimeoutSecs int

	// PhotoStore selects where staged photos flush to: "backend" (the loan
	// API's photo endpoint) or "cloudinary".
	PhotoStore          string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	MaxPhotosPerItem  int
	MaxPhotosAllItems int
}

var envBindings = map[string]string{
	"app.port":              "APP_PORT",
	"app.devlog":            "APP_DEV_LOG",
	"mysql.host":            "MYSQL_HOST",
	"mysql.port":            "MYSQL_PORT",
	"mysql.db":              "MYSQL_DB",
	"mysql.user":            "MYSQL_USER",
	"mysql.pass":            "MYSQL_PASS",
	"redis.addr":            "REDIS_ADDR",
	"redis.db":              "REDIS_DB",
	"idempotency.ttl":       "IDEMPOTENCY_TTL_SECONDS",
	"backend.base_url":      "BACKEND_BASE_URL",
	"backend.timeout":       "BACKEND_TIMEOUT_SECONDS",
	"photos.store":          "PHOTO_STORE",
	"cloudinary.cloud_name": "CLOUDINARY_CLOUDNAME",
	"cloudinary.api_key":    "CLOUDINARY_API_KEY",
	"cloudinary.api_secret": "CLOUDINARY_API_SECRET",
	"cloudinary.folder":     "CLOUDINARY_UPLOAD_FOLDER",
	"photos.max_per_item":   "PHOTOS_MAX_PER_ITEM",
	"photos.max_all_items":  "PHOTOS_MAX_ALL_ITEMS",
}

func Load() (*Config, error) {
	// .env is optional; OS-set variables win in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("mysql.host", "mysql")
	viper.SetDefault("mysql.port", "3306")
	viper.SetDefault("mysql.db", "goldloan")
	viper.SetDefault("mysql.user", "goldloan")
	viper.SetDefault("mysql.pass", "goldloan")
	viper.SetDefault("redis.addr", "redis:6379")
	viper.SetDefault("idempotency.ttl", 300)
	viper.SetDefault("backend.timeout", 15)
	viper.SetDefault("photos.store", "backend")
	viper.SetDefault("photos.max_per_item", 3)
	viper.SetDefault("photos.max_all_items", 1)

	c := &Config{
		AppPort: viper.GetString("app.port"),
		DevLog:  viper.GetBool("app.devlog"),

		MySQLHost: viper.GetString("mysql.host"),
		MySQLPort: viper.GetString("mysql.port"),
		MySQLDB:   viper.GetString("mysql.db"),
		MySQLUser: viper.GetString("mysql.user"),
		MySQLPass: viper.GetString("mysql.pass"),

		RedisAddr: viper.GetString("redis.addr"),
		RedisDB:   viper.GetInt("redis.db"),

		IdempTTLSecs: viper.GetInt("idempotency.ttl"),

		BackendBaseURL:  viper.GetString("backend.base_url"),
		HTTPTimeoutSecs: viper.GetInt("backend.timeout"),

		PhotoStore:          viper.GetString("photos.store"),
		CloudinaryCloudName: viper.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    viper.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: viper.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    viper.GetString("cloudinary.folder"),

		MaxPhotosPerItem:  viper.GetInt("photos.max_per_item"),
		MaxPhotosAllItems: viper.GetInt("photos.max_all_items"),
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.BackendBaseURL == "" {
		return errors.New("missing BACKEND_BASE_URL")
	}
	switch c.PhotoStore {
	case "backend":
	case "cloudinary":
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return errors.New("cloudinary photo store requires CLOUDINARY_CLOUDNAME/API_KEY/API_SECRET")
		}
	default:
		return fmt.Errorf("unknown PHOTO_STORE %q", c.PhotoStore)
	}
	if c.MaxPhotosPerItem < 1 || c.MaxPhotosAllItems < 1 {
		return errors.New("photo capacities must be at least 1")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
