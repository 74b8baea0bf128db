// Package config carga la configuración del servicio desde env vars y
// opcionalmente un archivo config.yml.
package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`

	DBDSN     string `mapstructure:"DB_DSN"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	DirectoryBaseURL string `mapstructure:"DIRECTORY_BASE_URL"`
	DirectoryAPIKey  string `mapstructure:"DIRECTORY_API_KEY"`

	// Política de duración de grants: acota lo que el paciente puede elegir
	// al aprobar. Es configuración, no una constante del dominio.
	GrantMinDurationMinutes int `mapstructure:"GRANT_MIN_DURATION_MINUTES"`
	GrantMaxDurationMinutes int `mapstructure:"GRANT_MAX_DURATION_MINUTES"`

	VerificationCodeTTLMinutes int `mapstructure:"VERIFICATION_CODE_TTL_MINUTES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

func Load() *Config {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if errors.As(err, &notFoundErr) {
			log.Println("config file not found; using environment variables and defaults")
		} else {
			log.Fatalf("error reading config file: %s", err)
		}
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_DSN", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DIRECTORY_BASE_URL", "")
	viper.SetDefault("DIRECTORY_API_KEY", "")
	viper.SetDefault("GRANT_MIN_DURATION_MINUTES", 5)
	viper.SetDefault("GRANT_MAX_DURATION_MINUTES", 43200) // 30 días
	viper.SetDefault("VERIFICATION_CODE_TTL_MINUTES", 5)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("unable to decode config: %v", err)
	}

	return &cfg
}
