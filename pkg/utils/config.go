package utils

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

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	DB       DBConfig       `yaml:"db"`
	Auth     AuthConfig     `yaml:"auth"`
	Colleges CollegesConfig `yaml:"colleges"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	JWTDuration time.Duration `yaml:"jwt_duration"`
}

type CollegesConfig struct {
	// SourceURL switches GET /api/colleges to proxy an external JSON feed.
	SourceURL     string        `yaml:"source_url"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
}

type GRPCConfig struct {
	Addr string `yaml:"addr"` // empty disables the gRPC health server
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr: ":8080",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Auth: AuthConfig{
			// dev default (change for demo / production)
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "pathfinder",
			JWTDuration: 24 * time.Hour,
		},
		Colleges: CollegesConfig{
			RemoteTimeout: 15 * time.Second,
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file in the working directory, and PATHFINDER_* environment variables, in
// that order of precedence (later wins).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PATHFINDER_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("PATHFINDER_CORS_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PATHFINDER_DB_PATH"); v != "" {
		c.DB.Path = v
	}
	if v := os.Getenv("PATHFINDER_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("PATHFINDER_JWT_ISSUER"); v != "" {
		c.Auth.JWTIssuer = v
	}
	if hours := envInt("PATHFINDER_JWT_TTL_HOURS", 0); hours > 0 {
		c.Auth.JWTDuration = time.Duration(hours) * time.Hour
	}
	if v := os.Getenv("COLLEGES_SOURCE_URL"); v != "" {
		c.Colleges.SourceURL = v
	}
	if v := os.Getenv("PATHFINDER_COLLEGES_SOURCE_URL"); v != "" {
		c.Colleges.SourceURL = v
	}
	if v := os.Getenv("PATHFINDER_GRPC_ADDR"); v != "" {
		c.GRPC.Addr = v
	}
	if v := os.Getenv("PATHFINDER_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
