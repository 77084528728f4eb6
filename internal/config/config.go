package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"lunchsync/internal/model"
)

var ErrUnknownInstance = errors.New("provided instance not found")

type Config struct {
	RunAddress    string
	DatabaseURI   string
	JWTSecret     string
	InstancesFile string
	SyncInterval  time.Duration
	SyncWorkers   int
	KafkaBrokers  []string
	KafkaTopic    string
	LogLevel      string
	LogFormat     string

	Instances []Instance
	Sheets    []model.SheetRef
}

type instancesFile struct {
	Instances []Instance       `yaml:"instances"`
	Sheets    []model.SheetRef `yaml:"sheets"`
}

// Instance is one company deployment of the lunches API.
type Instance struct {
	Key         string `yaml:"key"`
	Company     string `yaml:"company"`
	APIBaseURI  string `yaml:"api_base_uri"`
	AccessToken string `yaml:"access_token"`
	APISecret   string `yaml:"api_secret"`
}

func New() *Config {
	return &Config{
		RunAddress:    "localhost:8080",
		DatabaseURI:   "",
		JWTSecret:     "super-secret-jwt-key",
		InstancesFile: "instances.yaml",
		SyncInterval:  0,
		SyncWorkers:   1,
		KafkaTopic:    "lunches.orders",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.RunAddress, "address", "a", c.RunAddress, "server address and port")
	fs.StringVarP(&c.DatabaseURI, "database", "d", c.DatabaseURI, "database URI")
	fs.StringVarP(&c.JWTSecret, "jwt-secret", "s", c.JWTSecret, "jwt signing key")
	fs.StringVarP(&c.InstancesFile, "instances", "i", c.InstancesFile, "instances and sheets YAML file")
	fs.DurationVar(&c.SyncInterval, "interval", c.SyncInterval, "periodic sync interval, 0 disables")
	fs.IntVar(&c.SyncWorkers, "workers", c.SyncWorkers, "parallel order syncs")
	fs.StringSliceVar(&c.KafkaBrokers, "kafka-brokers", c.KafkaBrokers, "kafka brokers for order events")
	fs.StringVar(&c.KafkaTopic, "kafka-topic", c.KafkaTopic, "kafka topic for order events")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
}

// Load applies .env and environment overrides and reads the instances file.
func (c *Config) Load() error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using system environment variables")
	}

	c.RunAddress = getEnv("RUN_ADDRESS", c.RunAddress)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.InstancesFile = getEnv("INSTANCES_FILE", c.InstancesFile)
	c.SyncInterval = getDuration("SYNC_INTERVAL", c.SyncInterval)
	c.SyncWorkers = getInt("SYNC_WORKERS", c.SyncWorkers)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.KafkaBrokers = splitList(brokers)
	}
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	data, err := os.ReadFile(c.InstancesFile)
	if err != nil {
		return fmt.Errorf("read instances file: %w", err)
	}
	return c.parseInstances(data)
}

func (c *Config) parseInstances(data []byte) error {
	var f instancesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse instances file: %w", err)
	}
	for i, inst := range f.Instances {
		if inst.Key == "" || inst.APIBaseURI == "" {
			return fmt.Errorf("instance #%d: key and api_base_uri are required", i+1)
		}
	}
	c.Instances = f.Instances
	c.Sheets = f.Sheets
	return nil
}

func (c *Config) Instance(key string) (Instance, error) {
	for _, inst := range c.Instances {
		if inst.Key == key {
			return inst, nil
		}
	}
	return Instance{}, fmt.Errorf("%w: %s", ErrUnknownInstance, key)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
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
