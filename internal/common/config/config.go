package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	SyncMemory = "memory"
	SyncRemote = "remote"
)

// DB and MQ fields are read as DATABASE_<FIELD> and RABBITMQ_<FIELD>.
type DB struct {
	Host     string `default:"localhost"`
	Port     int    `default:"5432"`
	User     string `default:"restaurant_user"`
	Password string `default:"restaurant_pass"`
	Name     string `default:"restaurant_db"`
}

func (d DB) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

type MQ struct {
	Host     string `default:"localhost"`
	Port     int    `default:"5672"`
	User     string `default:"guest"`
	Password string `default:"guest"`
	VHost    string `default:"/"`
	TLS      bool   `default:"false"`
}

type App struct {
	HTTPPort          int           `envconfig:"FLOOR_HTTP_PORT" default:"3000"`
	DineInTables      int           `envconfig:"FLOOR_DINE_IN_TABLES" default:"10"`
	Sync              string        `envconfig:"FLOOR_SYNC" default:"memory"`
	DocumentPath      string        `envconfig:"FLOOR_DOCUMENT_PATH" default:"restaurant/main"`
	HeartbeatInterval time.Duration `envconfig:"FLOOR_HEARTBEAT_INTERVAL" default:"15s"`
	LogLevel          string        `envconfig:"FLOOR_LOG_LEVEL" default:"info"`
	SessionSecret     string        `envconfig:"FLOOR_SESSION_SECRET"`
	SessionTTL        time.Duration `envconfig:"FLOOR_SESSION_TTL" default:"12h"`
	Database          DB            `envconfig:"DATABASE"`
	Rabbit            MQ            `envconfig:"RABBITMQ"`
}

// Load reads .env.$GO_ENV (or .env) when present, then the process
// environment. Real environment variables win over file values.
func Load() (App, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	if err := godotenv.Load(".env." + env); err != nil {
		_ = godotenv.Load()
	}

	var a App
	if err := envconfig.Process("", &a); err != nil {
		return App{}, errors.Wrap(err, "read environment")
	}
	return a, a.Validate()
}

func (a App) Validate() error {
	if a.HTTPPort < 1 || a.HTTPPort > 65535 {
		return errors.Errorf("FLOOR_HTTP_PORT out of range: %d", a.HTTPPort)
	}
	if a.DineInTables < 1 {
		return errors.Errorf("FLOOR_DINE_IN_TABLES must be positive, got %d", a.DineInTables)
	}
	if a.Sync != SyncMemory && a.Sync != SyncRemote {
		return errors.Errorf("FLOOR_SYNC must be %q or %q, got %q", SyncMemory, SyncRemote, a.Sync)
	}
	if a.DocumentPath == "" {
		return errors.New("FLOOR_DOCUMENT_PATH is empty")
	}
	if a.HeartbeatInterval <= 0 {
		return errors.New("FLOOR_HEARTBEAT_INTERVAL must be positive")
	}
	if a.SessionTTL <= 0 {
		return errors.New("FLOOR_SESSION_TTL must be positive")
	}
	if a.Sync == SyncRemote && (a.Database.Host == "" || a.Rabbit.Host == "") {
		return errors.New("remote sync needs DATABASE_HOST and RABBITMQ_HOST")
	}
	return nil
}
