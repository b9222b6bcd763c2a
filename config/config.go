/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults
  2. .env in the working directory (joho/godotenv, missing file ignored;
     never overrides variables already set)
  3. YAML file passed to Load, if any
  4. EDUTIME_* environment variables
  5. Command-line flags (applied by cmd/server)

EXAMPLE YAML:
  env: production
  server:
    port: 8080
    allowedOrigins: ["https://staff.school.edu"]
  store:
    driver: postgres
    dsn: postgres://edutime:secret@db/edutime?sslmode=disable
  school:
    start: "08:00"
    grace: "08:15"
    end: "15:00"
  auth:
    jwtSecret: change-me
    adminEmail: admin@school.edu
    adminPasswordHash: $2a$10$...
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev        = "dev"
	EnvProduction = "production"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Env        string            `yaml:"env"`
	Locale     string            `yaml:"locale"`
	Server     Server            `yaml:"server"`
	Store      Store             `yaml:"store"`
	School     School            `yaml:"school"`
	Auth       Auth              `yaml:"auth"`
	Log        Log               `yaml:"log"`
	Live       Live              `yaml:"live"`
	LeaveTypes []LeaveTypeConfig `yaml:"leaveTypes"`
}

type Server struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
}

type Store struct {
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	MongoDatabase string `yaml:"mongoDatabase"`
}

type School struct {
	Start            string `yaml:"start"`
	Grace            string `yaml:"grace"`
	End              string `yaml:"end"`
	FallbackLocation string `yaml:"fallbackLocation"`
	Timezone         string `yaml:"timezone"`
}

type Auth struct {
	JWTSecret         string        `yaml:"jwtSecret"`
	TokenTTL          time.Duration `yaml:"tokenTTL"`
	AdminEmail        string        `yaml:"adminEmail"`
	AdminName         string        `yaml:"adminName"`
	AdminPasswordHash string        `yaml:"adminPasswordHash"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Live struct {
	Buffer int `yaml:"buffer"`
}

// LeaveTypeConfig replaces the built-in default catalog when set.
type LeaveTypeConfig struct {
	Name           string  `yaml:"name"`
	DefaultBalance float64 `yaml:"defaultBalance"`
	Icon           string  `yaml:"icon"`
	Color          string  `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:    EnvDev,
		Locale: "en",
		Server: Server{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Store: Store{
			Driver:        DriverSQLite,
			DSN:           "edutime.db",
			MongoDatabase: "edutime",
		},
		School: School{
			Start:            "08:00",
			Grace:            "08:15",
			End:              "15:00",
			FallbackLocation: "Staff Room",
		},
		Auth: Auth{
			JWTSecret: "dev-secret",
			TokenTTL:  12 * time.Hour,
			AdminName: "Principal Wilson",
		},
		Log:  Log{Level: "info", Format: "text"},
		Live: Live{Buffer: 16},
	}
}

// Load builds the configuration from defaults, .env, the YAML file at
// path (skipped when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("EDUTIME_ENV", &c.Env)
	str("EDUTIME_LOCALE", &c.Locale)
	str("EDUTIME_STORE", &c.Store.Driver)
	str("EDUTIME_DSN", &c.Store.DSN)
	str("EDUTIME_MONGO_DATABASE", &c.Store.MongoDatabase)
	str("EDUTIME_SCHOOL_START", &c.School.Start)
	str("EDUTIME_SCHOOL_GRACE", &c.School.Grace)
	str("EDUTIME_SCHOOL_END", &c.School.End)
	str("EDUTIME_FALLBACK_LOCATION", &c.School.FallbackLocation)
	str("EDUTIME_TIMEZONE", &c.School.Timezone)
	str("EDUTIME_JWT_SECRET", &c.Auth.JWTSecret)
	str("EDUTIME_ADMIN_EMAIL", &c.Auth.AdminEmail)
	str("EDUTIME_ADMIN_NAME", &c.Auth.AdminName)
	str("EDUTIME_ADMIN_PASSWORD_HASH", &c.Auth.AdminPasswordHash)
	str("EDUTIME_LOG_LEVEL", &c.Log.Level)
	str("EDUTIME_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("EDUTIME_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EDUTIME_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("EDUTIME_TOKEN_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EDUTIME_TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = ttl
	}
	if v, ok := lookup("EDUTIME_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Env != EnvDev && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("env must be %q or %q", EnvDev, EnvProduction))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("store.driver %q unknown", c.Store.Driver))
	}
	if c.Store.Driver != DriverMemory && c.Store.DSN == "" {
		errs = append(errs, errors.New("store.dsn is required"))
	}

	start, okStart := validClock(c.School.Start)
	grace, okGrace := validClock(c.School.Grace)
	_, okEnd := validClock(c.School.End)
	if !okStart || !okGrace || !okEnd {
		errs = append(errs, errors.New("school hours must be HH:MM"))
	} else if start > grace {
		errs = append(errs, fmt.Errorf("school.start %s is after school.grace %s", start, grace))
	}
	if c.School.Timezone != "" {
		if _, err := time.LoadLocation(c.School.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("school.timezone: %w", err))
		}
	}

	if c.Env == EnvProduction && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == Default().Auth.JWTSecret) {
		errs = append(errs, errors.New("auth.jwtSecret must be set in production"))
	}
	for i, lt := range c.LeaveTypes {
		if strings.TrimSpace(lt.Name) == "" {
			errs = append(errs, fmt.Errorf("leaveTypes[%d].name is required", i))
		}
		if lt.DefaultBalance < 0 {
			errs = append(errs, fmt.Errorf("leaveTypes[%d].defaultBalance must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

// Location returns the school's time zone, local time when unset.
func (c *Config) Location() *time.Location {
	if c.School.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.School.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func validClock(s string) (string, bool) {
	if len(s) != 5 {
		return s, false
	}
	_, err := time.Parse("15:04", s)
	return s, err == nil
}
