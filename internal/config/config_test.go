package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disease-detector/internal/ensemble"
	"disease-detector/internal/scorer"
)

var envKeys = []string{
	"HTTP_ADDR", "STORE_DRIVER", "DATABASE_PATH", "DB_HOST", "DB_NAME", "DB_PORT",
	"REDIS_ENABLED", "REDIS_ADDR", "MQTT_ENABLED", "MQTT_BROKER", "MQTT_TOPIC", "MQTT_QOS",
	"TELEMETRY_STREAM", "SNAPSHOT_SCHEDULE", "CATALOG_PATH",
	"SCORER_TIMEOUT_MS", "HISTORY_TIMEOUT_MS", "HISTORY_LIMIT", "HISTORY_BOOST",
	"VIABILITY_THRESHOLD", "TOP_K", "LOG_LEVEL", "LOG_FORMAT",
	"MODEL_CLINICAL_PROVIDER", "MODEL_CLINICAL_URL", "MODEL_CLINICAL_WEIGHT",
	"MODEL_PUBMED_WEIGHT", "MODEL_BIOBERT_WEIGHT", "MODEL_BIOBERT_DIMENSIONS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5001", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "patients.db", cfg.Store.SQLite.Path)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "@every 1m", cfg.Telemetry.SnapshotSchedule)
	assert.Equal(t, "", cfg.CatalogPath)

	assert.Equal(t, 3*time.Second, cfg.Prediction.ScorerTimeout)
	assert.Equal(t, time.Second, cfg.Prediction.HistoryTimeout)
	assert.Equal(t, 10, cfg.Prediction.HistoryLimit)
	assert.Equal(t, 1.15, cfg.Prediction.HistoryBoost)
	assert.Equal(t, 0.05, cfg.Prediction.ViabilityThreshold)
	assert.Equal(t, 3, cfg.Prediction.TopK)

	require.Len(t, cfg.Models, 3)
	assert.Equal(t, "Bio_ClinicalBERT", cfg.Models[0].Name)
	assert.Equal(t, scorer.ProviderHashing, cfg.Models[0].Provider)
	assert.Equal(t, map[string]float64{"Bio_ClinicalBERT": 0.40, "PubMedBERT": 0.35, "BioBERT": 0.25}, cfg.ModelWeights())

	opts := cfg.EngineOptions()
	assert.NoError(t, opts.Weights.Validate())
	assert.Equal(t, ensemble.DefaultMethodWeights(), opts.Weights.Methods)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("HISTORY_BOOST", "1.3")
	t.Setenv("TOP_K", "5")
	t.Setenv("SCORER_TIMEOUT_MS", "250")
	t.Setenv("MODEL_CLINICAL_PROVIDER", "inference")
	t.Setenv("MODEL_CLINICAL_URL", "http://tei:8080")
	t.Setenv("MODEL_CLINICAL_WEIGHT", "0.5")
	t.Setenv("MODEL_PUBMED_WEIGHT", "0.3")
	t.Setenv("MODEL_BIOBERT_WEIGHT", "0.2")
	t.Setenv("MODEL_BIOBERT_DIMENSIONS", "256")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, byte(2), cfg.MQTT.QoS)
	assert.Equal(t, 1.3, cfg.Prediction.HistoryBoost)
	assert.Equal(t, 5, cfg.Prediction.TopK)
	assert.Equal(t, 250*time.Millisecond, cfg.Prediction.ScorerTimeout)
	assert.Equal(t, "inference", cfg.Models[0].Provider)
	assert.Equal(t, "http://tei:8080", cfg.Models[0].URL)
	assert.Equal(t, 256, cfg.Models[2].Dimensions)
	assert.NoError(t, cfg.EngineOptions().Weights.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":          "mongo",
		"TOP_K":                 "three",
		"HISTORY_BOOST":         "lots",
		"REDIS_ENABLED":         "maybe",
		"SCORER_TIMEOUT_MS":     "0",
		"MODEL_CLINICAL_WEIGHT": "heavy",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
