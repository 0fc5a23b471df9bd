package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"disease-detector/internal/common/config"
	"disease-detector/internal/ensemble"
	"disease-detector/internal/scorer"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ModelSlot 模型槽位默认值
type ModelSlot struct {
	Env    string
	Name   string
	Model  string
	Weight float64
}

// Slots are the three embedding models of the ensemble, in combine order.
var Slots = []ModelSlot{
	{Env: "CLINICAL", Name: "Bio_ClinicalBERT", Model: "emilyalsentzer/Bio_ClinicalBERT", Weight: 0.40},
	{Env: "PUBMED", Name: "PubMedBERT", Model: "microsoft/BiomedNLP-PubMedBERT-base-uncased-abstract-fulltext", Weight: 0.35},
	{Env: "BIOBERT", Name: "BioBERT", Model: "dmis-lab/biobert-v1.1", Weight: 0.25},
}

// Config 疾病预测服务配置
type Config struct {
	HTTPAddr string

	Store struct {
		Driver string // sqlite | postgres
		SQLite config.SQLiteConfig
	}
	Database config.DatabaseConfig

	Redis        config.RedisConfig
	RedisEnabled bool
	MQTT         config.MQTTConfig
	MQTTEnabled  bool
	MQTTTopic    string

	Telemetry struct {
		Stream           string
		StreamMaxLen     int64
		SnapshotSchedule string
	}

	CatalogPath string

	Prediction struct {
		ScorerTimeout      time.Duration
		HistoryTimeout     time.Duration
		HistoryLimit       int
		HistoryBoost       float64
		ViabilityThreshold float64
		TopK               int
	}

	Models []scorer.ModelConfig

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":5001")

	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite))
	if cfg.Store.Driver != DriverSQLite && cfg.Store.Driver != DriverPostgres {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.Store.Driver)
	}
	cfg.Store.SQLite.Path = getEnv("DATABASE_PATH", "patients.db")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = 5432
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "disease_detector")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = 10
	cfg.Database.LoadFromEnv("DB")

	if cfg.RedisEnabled, err = parseBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.LoadFromEnv("REDIS")

	if cfg.MQTTEnabled, err = parseBool("MQTT_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "disease-detector"
	cfg.MQTT.QoS = 1
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTTTopic = getEnv("MQTT_TOPIC", "disease-detector/predictions")

	cfg.Telemetry.Stream = getEnv("TELEMETRY_STREAM", "disease-detector:predictions")
	maxLen, err := parseInt("TELEMETRY_STREAM_MAXLEN", 10000)
	if err != nil {
		return nil, err
	}
	cfg.Telemetry.StreamMaxLen = int64(maxLen)
	cfg.Telemetry.SnapshotSchedule = getEnv("SNAPSHOT_SCHEDULE", "@every 1m")

	cfg.CatalogPath = getEnv("CATALOG_PATH", "")

	if cfg.Prediction.ScorerTimeout, err = parseMillis("SCORER_TIMEOUT_MS", 3000); err != nil {
		return nil, err
	}
	if cfg.Prediction.HistoryTimeout, err = parseMillis("HISTORY_TIMEOUT_MS", 1000); err != nil {
		return nil, err
	}
	if cfg.Prediction.HistoryLimit, err = parseInt("HISTORY_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.Prediction.HistoryBoost, err = parseFloat("HISTORY_BOOST", ensemble.DefaultHistoryBoost); err != nil {
		return nil, err
	}
	if cfg.Prediction.ViabilityThreshold, err = parseFloat("VIABILITY_THRESHOLD", ensemble.DefaultViabilityThreshold); err != nil {
		return nil, err
	}
	if cfg.Prediction.TopK, err = parseInt("TOP_K", ensemble.DefaultTopK); err != nil {
		return nil, err
	}

	for _, slot := range Slots {
		m, err := loadModel(slot)
		if err != nil {
			return nil, err
		}
		cfg.Models = append(cfg.Models, m)
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func loadModel(slot ModelSlot) (scorer.ModelConfig, error) {
	prefix := "MODEL_" + slot.Env + "_"
	m := scorer.ModelConfig{
		Name:     slot.Name,
		Provider: getEnv(prefix+"PROVIDER", scorer.ProviderHashing),
		Model:    getEnv(prefix+"NAME", slot.Model),
		URL:      getEnv(prefix+"URL", ""),
		APIKey:   getEnv(prefix+"API_KEY", ""),
	}
	var err error
	if m.Weight, err = parseFloat(prefix+"WEIGHT", slot.Weight); err != nil {
		return m, err
	}
	if m.Dimensions, err = parseInt(prefix+"DIMENSIONS", 0); err != nil {
		return m, err
	}
	return m, nil
}

// ModelWeights maps model name to its ensemble weight.
func (c *Config) ModelWeights() map[string]float64 {
	w := make(map[string]float64, len(c.Models))
	for _, m := range c.Models {
		w[m.Name] = m.Weight
	}
	return w
}

// EngineOptions builds the ensemble options; they are validated by
// ensemble.NewEngine.
func (c *Config) EngineOptions() ensemble.Options {
	opts := ensemble.DefaultOptions(c.ModelWeights())
	opts.HistoryBoost = c.Prediction.HistoryBoost
	opts.TopK = c.Prediction.TopK
	opts.Threshold = c.Prediction.ViabilityThreshold
	opts.HistoryTimeout = c.Prediction.HistoryTimeout
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseMillis(key string, defaultMS int) (time.Duration, error) {
	ms, err := parseInt(key, defaultMS)
	if err != nil {
		return 0, err
	}
	if ms <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
