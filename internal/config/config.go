// Package config загружает настройки сервисов Flowgraph.
//
// Порядок применения: значения по умолчанию, затем YAML файл
// (FLOWGRAPH_CONFIG или явный путь), затем переменные окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Flowgraph/internal/engine"
	"github.com/shaiso/Flowgraph/internal/mq"
)

// ErrInvalidConfig — некорректное значение настройки.
var ErrInvalidConfig = errors.New("invalid config")

// Config — настройки API, worker и компилятора.
type Config struct {
	Version int `yaml:"version"`

	API struct {
		Port           string `yaml:"port"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	} `yaml:"api"`

	Worker struct {
		Port     string `yaml:"port"`
		Prefetch int    `yaml:"prefetch"`
	} `yaml:"worker"`

	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`

	Compiler struct {
		Strict       bool   `yaml:"strict"`
		Duplicates   string `yaml:"duplicates"`
		Merge        string `yaml:"merge"`
		Display      string `yaml:"display"`
		TrailingSink *bool  `yaml:"trailing_sink"`
	} `yaml:"compiler"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	var cfg Config
	cfg.Version = 1
	cfg.API.Port = "8080"
	cfg.API.MaxUploadBytes = 10 << 20
	cfg.Worker.Port = "8082"
	cfg.Worker.Prefetch = 10
	cfg.RabbitMQ.URL = mq.DefaultURL()
	cfg.Compiler.Duplicates = string(engine.DuplicateFail)
	cfg.Compiler.Merge = string(engine.MergeLastWriteWins)
	cfg.Compiler.Display = string(engine.DisplayList)
	return &cfg
}

// Load загружает настройки. Пустой path означает FLOWGRAPH_CONFIG;
// если и она пуста, файл не читается.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FLOWGRAPH_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if _, err := cfg.CompilerOptions(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.Version != 1 {
		return fmt.Errorf("%w: unsupported config version: %d", ErrInvalidConfig, c.Version)
	}

	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("API_PORT"); v != "" {
		c.API.Port = v
	}
	if v := os.Getenv("WORKER_PORT"); v != "" {
		c.Worker.Port = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("FLOWGRAPH_DUPLICATES"); v != "" {
		c.Compiler.Duplicates = v
	}
	if v := os.Getenv("FLOWGRAPH_MERGE"); v != "" {
		c.Compiler.Merge = v
	}
	if v := os.Getenv("FLOWGRAPH_DISPLAY"); v != "" {
		c.Compiler.Display = v
	}

	if v := os.Getenv("FLOWGRAPH_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: FLOWGRAPH_STRICT=%q", ErrInvalidConfig, v)
		}
		c.Compiler.Strict = b
	}

	if v := os.Getenv("FLOWGRAPH_TRAILING_SINK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: FLOWGRAPH_TRAILING_SINK=%q", ErrInvalidConfig, v)
		}
		c.Compiler.TrailingSink = &b
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: MAX_UPLOAD_BYTES=%q", ErrInvalidConfig, v)
		}
		c.API.MaxUploadBytes = n
	}

	return nil
}

// CompilerOptions собирает engine.Options из настроек.
func (c *Config) CompilerOptions() (engine.Options, error) {
	dup, err := engine.ParseDuplicatePolicy(c.Compiler.Duplicates)
	if err != nil {
		return engine.Options{}, err
	}
	merge, err := engine.ParseMergePolicy(c.Compiler.Merge)
	if err != nil {
		return engine.Options{}, err
	}
	display, err := engine.ParseDisplayMode(c.Compiler.Display)
	if err != nil {
		return engine.Options{}, err
	}

	opts := engine.Options{
		Strict:     c.Compiler.Strict,
		Duplicates: dup,
		Merge:      merge,
		Display:    display,
	}
	if c.Compiler.TrailingSink != nil {
		opts.NoTrailingSink = !*c.Compiler.TrailingSink
	}

	return opts, nil
}

// APIAddr возвращает адрес HTTP сервера API.
func (c *Config) APIAddr() string {
	return ":" + c.API.Port
}

// WorkerAddr возвращает адрес HTTP сервера worker (/healthz, /metrics).
func (c *Config) WorkerAddr() string {
	return ":" + c.Worker.Port
}
