package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET,required"`

	// Third-party movie catalog.
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	CatalogAPIKey  string `env:"CATALOG_API_KEY"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
