package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	PasswordPepper string

	HTTPAddress      string
	AllowedOrigins   []string
	AllowCredentials bool

	CatalogCacheTTL time.Duration

	LogLevel string
}

var envKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"JWT_SECRET",
	"JWT_ISSUER",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"PASSWORD_PEPPER",
	"HTTP_ADDRESS",
	"ALLOWED_ORIGINS",
	"ALLOW_CREDENTIALS",
	"CATALOG_CACHE_TTL",
	"LOG_LEVEL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("ACCESS_TOKEN_TTL", "168h")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("LOG_LEVEL", "debug")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		PasswordPepper:   v.GetString("PASSWORD_PEPPER"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}

	required := map[string]string{
		"DATABASE_URL":  cfg.DatabaseURL,
		"REDIS_ADDRESS": cfg.RedisAddress,
		"JWT_SECRET":    cfg.JWTSecret,
		"JWT_ISSUER":    cfg.JWTIssuer,
	}
	for key, val := range required {
		if val == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
	}

	var err error
	if cfg.AccessTokenTTL, err = parseTTL(v, "ACCESS_TOKEN_TTL"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = parseTTL(v, "REFRESH_TOKEN_TTL"); err != nil {
		return nil, err
	}
	if cfg.CatalogCacheTTL, err = parseTTL(v, "CATALOG_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}

	if raw := v.GetString("ALLOWED_ORIGINS"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.AllowedOrigins); err != nil {
			// plain single-origin value, not a JSON array
			cfg.AllowedOrigins = []string{raw}
		}
	}

	return cfg, nil
}

func parseTTL(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
