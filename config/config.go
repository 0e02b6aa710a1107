package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Log      Log
	Gemini   Gemini
}

type Server struct {
	Port           string
	Mode           string
	AllowedOrigins []string
}

type Database struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type Auth struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

type Log struct {
	Level  string
	Pretty bool
}

type Gemini struct {
	APIKey string
	Model  string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 20)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("JWT_TTL", "12h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", true)
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.Mode = viper.GetString("GIN_MODE")
	config.Server.AllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.MaxOpenConns = viper.GetInt("DATABASE_MAX_OPEN_CONNS")
	config.Database.MaxIdleConns = viper.GetInt("DATABASE_MAX_IDLE_CONNS")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTL = viper.GetDuration("JWT_TTL")
	config.Auth.AdminEmail = viper.GetString("ADMIN_EMAIL")
	config.Auth.AdminPassword = viper.GetString("ADMIN_PASSWORD")

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.Pretty = viper.GetBool("LOG_PRETTY")

	config.Gemini.APIKey = viper.GetString("GEMINI_API_KEY")
	config.Gemini.Model = viper.GetString("GEMINI_MODEL")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, using an insecure development secret")
		config.Auth.JWTSecret = "examroom-dev-secret"
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("mode", config.Server.Mode).
		Str("db_host", config.Database.Host).
		Str("db_name", config.Database.Name).
		Bool("gemini_enabled", config.Gemini.APIKey != "").
		Msg("Config loaded")
	return &config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
