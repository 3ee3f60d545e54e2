package config

import (
	"log/slog"
	"time"

	"github.com/entitygraph/core/pkg/domain"
	"github.com/fulcrumproject/utils/gormpg"
	"github.com/fulcrumproject/utils/logging"
)

const (
	EnvPrefix = "ENTITYGRAPH_"
)

// Config is the top-level process configuration.
type Config struct {
	Port            uint          `json:"port" env:"PORT" validate:"required,min=1,max=65535"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
	HealthPort      uint          `json:"healthPort" env:"HEALTH_PORT" validate:"required,min=1,max=65535"`
	Authenticators  []string      `json:"authenticators" env:"AUTHENTICATORS" validate:"omitempty,dive,oneof=static"`
	LeadSecret      string        `json:"leadSecret" env:"LEAD_SECRET"`
	LogConfig       logging.Conf  `json:"log" validate:"required"`
	DBConfig        gormpg.Conf   `json:"db" env:"DB" validate:"required"`
	ApiServer       bool          `json:"apiServer" env:"API_SERVER" validate:"boolean"`
	Limits          domain.Limits `json:"limits"`
}

var Default = Config{
	Port:            8080,
	ShutdownTimeout: 30 * time.Second,
	HealthPort:      8081,
	Authenticators:  []string{"static"},
	LeadSecret:      "",
	LogConfig: logging.Conf{
		Level:  slog.LevelInfo,
		Format: "json",
	},
	DBConfig: gormpg.Conf{
		DSN:       "host=localhost user=entitygraph password=entitygraph_password dbname=entitygraph_db port=5432 sslmode=disable",
		LogLevel:  slog.LevelWarn,
		LogFormat: "text",
	},
	ApiServer: true,
	Limits:    domain.DefaultLimits(),
}
