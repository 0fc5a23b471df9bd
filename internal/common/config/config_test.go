package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_IDLE", "3")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	c := DatabaseConfig{Host: "localhost", Port: 5432, MaxConns: 10, SSLMode: "disable"}
	c.LoadFromEnv("DB")

	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, 3, c.MaxIdle)
	assert.Equal(t, 10, c.MaxConns)
	assert.Contains(t, c.GetDSN(), "host=db.internal port=6543")
}

func TestSQLiteConfig_GetDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?cache=shared", (&SQLiteConfig{Path: ":memory:"}).GetDSN())
	assert.Contains(t, (&SQLiteConfig{Path: "patients.db"}).GetDSN(), "file:patients.db?")
}

func TestMQTTConfig_QoSBounds(t *testing.T) {
	t.Setenv("MQTT_QOS", "5")
	c := MQTTConfig{QoS: 1}
	c.LoadFromEnv("MQTT")
	assert.Equal(t, byte(1), c.QoS)

	t.Setenv("MQTT_QOS", "2")
	c.LoadFromEnv("MQTT")
	assert.Equal(t, byte(2), c.QoS)
}
