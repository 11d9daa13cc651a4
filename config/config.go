package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
		// AuthRateLimit caps register/login attempts per client per minute.
		AuthRateLimit int      `mapstructure:"authRateLimit"`
		AuthBurst     int      `mapstructure:"authBurst"`
		CORSOrigins   []string `mapstructure:"corsOrigins"`
	} `mapstructure:"server"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			MaxConns          int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
		Redis struct {
			Host     string `mapstructure:"host"`
			Port     string `mapstructure:"port"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Cache struct {
		Driver  string        `mapstructure:"driver"`
		TTL     time.Duration `mapstructure:"ttl"`
		Cleanup time.Duration `mapstructure:"cleanup"`
	} `mapstructure:"cache"`
	JWT struct {
		SecretKey      string        `mapstructure:"secretKey"`
		Issuer         string        `mapstructure:"issuer"`
		Audience       string        `mapstructure:"audience"`
		AccessTokenTTL time.Duration `mapstructure:"accessTokenTTL"`
		ShareTokenTTL  time.Duration `mapstructure:"shareTokenTTL"`
	} `mapstructure:"jwt"`
	Share struct {
		BaseURL string `mapstructure:"baseURL"`
	} `mapstructure:"share"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	Planner struct {
		DefaultCity string `mapstructure:"defaultCity"`
	} `mapstructure:"planner"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// PLANNER_JWT_SECRETKEY overrides jwt.secretKey, and so on.
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// RedisAddr is host:port for the Redis cache backend.
func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Repositories.Redis.Host, c.Repositories.Redis.Port)
}
