package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"disease-detector/internal/common/config"
	"disease-detector/internal/common/redis"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewRedisClient(&config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()
	start := c.start
	c.now = func() time.Time { return start.Add(2 * time.Minute) }
	ctx := context.Background()

	assert.False(t, c.HasData())
	require.NoError(t, c.Observe(ctx, NewEvent(true, 1.0, 100*time.Millisecond, "Flu", "P001")))
	require.NoError(t, c.Observe(ctx, NewEvent(true, 0.5, 300*time.Millisecond, "Flu", "")))
	require.NoError(t, c.Observe(ctx, NewEvent(true, 0, 200*time.Millisecond, "", "")))
	require.NoError(t, c.Observe(ctx, NewEvent(false, 0, 200*time.Millisecond, "", "")))
	require.NoError(t, c.Observe(ctx, NewEvent(true, 0.9, 200*time.Millisecond, "Migraine", "")))
	assert.True(t, c.HasData())

	p := c.Snapshot(3)
	assert.Equal(t, int64(5), p.TotalPredictions)
	assert.Equal(t, int64(4), p.SuccessfulPredictions)
	assert.Equal(t, int64(1), p.FailedPredictions)
	assert.Equal(t, 80.0, p.SuccessRate)
	assert.Equal(t, 0.8, p.AverageConfidence)
	assert.Equal(t, 200.0, p.AverageResponseTimeMS)
	assert.Equal(t, 120.0, p.UptimeSeconds)
	assert.Equal(t, "0h 2m 0s", p.UptimeHuman)
	assert.Equal(t, 3, p.ModelsLoaded)
	assert.Equal(t, 2.5, p.RequestsPerMinute)
	assert.Equal(t, []DiseaseCount{{"Flu", 2}, {"Migraine", 1}}, p.TopDiseases)
}

func TestCollector_KeepsLastThousandResponseTimes(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 1100; i++ {
		require.NoError(t, c.Observe(context.Background(), Event{Success: true, ResponseTime: time.Millisecond}))
	}
	assert.Len(t, c.responseTimes, maxResponseTimes)
}

func TestCollector_PrometheusText(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Observe(context.Background(), NewEvent(true, 1, time.Second, "Strep Throat", "")))

	text := c.PrometheusText(2)
	assert.Contains(t, text, "# TYPE disease_detector_total_predictions counter\ndisease_detector_total_predictions 1\n")
	assert.Contains(t, text, "disease_detector_models_loaded 2\n")
	assert.Contains(t, text, "disease_detector_avg_response_time 1\n")
	assert.Contains(t, text, `disease_detector_disease_predictions{disease="strep_throat"} 1`)
}

type failingObserver struct{ calls int }

func (f *failingObserver) Observe(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestFanout_SwallowsErrors(t *testing.T) {
	bad := &failingObserver{}
	c := NewCollector()
	f := NewFanout(zap.NewNop(), bad, nil, c)

	require.NoError(t, f.Observe(context.Background(), NewEvent(true, 1, time.Millisecond, "Flu", "")))
	assert.Equal(t, 1, bad.calls)
	assert.True(t, c.HasData())
}

func TestRedisStreamObserver(t *testing.T) {
	_, client := setupRedis(t)
	o := NewRedisStreamObserver(client, "", 100)

	e := NewEvent(true, 0.87, 42*time.Millisecond, "Flu", "P001")
	require.NoError(t, o.Observe(context.Background(), e))

	msgs, err := redis.ReadRange(context.Background(), client, DefaultStream)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, e.EventID, got.EventID)
	assert.Equal(t, "Flu", got.Disease)
	assert.Equal(t, 42*time.Millisecond, got.ResponseTime)
}

type recordingPublisher struct {
	topic   string
	payload any
	err     error
}

func (p *recordingPublisher) PublishJSON(topic string, v any) error {
	p.topic, p.payload = topic, v
	return p.err
}

func TestMQTTObserver(t *testing.T) {
	pub := &recordingPublisher{}
	o := NewMQTTObserver(pub, "")
	e := NewEvent(false, 0, time.Millisecond, "", "")

	require.NoError(t, o.Observe(context.Background(), e))
	assert.Equal(t, DefaultTopic, pub.topic)
	assert.Equal(t, e, pub.payload)

	pub.err = errors.New("not connected")
	assert.Error(t, o.Observe(context.Background(), e))
}

func TestReporter_PublishToRedis(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewCollector()
	require.NoError(t, c.Observe(context.Background(), NewEvent(true, 0.6, time.Millisecond, "Flu", "")))

	r := NewReporter(c, func() int { return 3 }, client, zap.NewNop())
	require.NoError(t, r.Publish(context.Background()))

	raw, err := mr.Get(DefaultSnapshotKey)
	require.NoError(t, err)
	var snap Performance
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, int64(1), snap.TotalPredictions)
	assert.Equal(t, 3, snap.ModelsLoaded)
	assert.True(t, mr.TTL(DefaultSnapshotKey) > 0)
}

func TestReporter_Start(t *testing.T) {
	r := NewReporter(NewCollector(), nil, nil, zap.NewNop())
	assert.Error(t, r.Start("not a schedule"))

	require.NoError(t, r.Start("@every 1h"))
	r.Stop()
	require.NoError(t, r.Publish(context.Background()))
}
