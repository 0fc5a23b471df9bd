// Package telemetry records one event per prediction request and fans it
// out to the in-process collector, Redis streams and MQTT.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event 单次预测遥测事件
type Event struct {
	EventID      string        `json:"event_id"`
	Success      bool          `json:"success"`
	Confidence   float64       `json:"confidence"` // top result, fraction 0-1
	ResponseTime time.Duration `json:"response_time_ns"`
	Disease      string        `json:"disease,omitempty"`
	PatientID    string        `json:"patient_id,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(success bool, confidence float64, responseTime time.Duration, disease, patientID string) Event {
	return Event{
		EventID:      uuid.New().String(),
		Success:      success,
		Confidence:   confidence,
		ResponseTime: responseTime,
		Disease:      disease,
		PatientID:    patientID,
		Timestamp:    time.Now().UTC(),
	}
}

// Observer receives prediction events.
type Observer interface {
	Observe(ctx context.Context, e Event) error
}

// Fanout delivers every event to all observers. Observer errors are logged
// and never returned, so telemetry cannot fail a request.
type Fanout struct {
	observers []Observer
	logger    *zap.Logger
}

// NewFanout ignores nil observers.
func NewFanout(logger *zap.Logger, observers ...Observer) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fanout{logger: logger}
	for _, o := range observers {
		if o != nil {
			f.observers = append(f.observers, o)
		}
	}
	return f
}

// Observe 分发事件
func (f *Fanout) Observe(ctx context.Context, e Event) error {
	for _, o := range f.observers {
		if err := o.Observe(ctx, e); err != nil {
			f.logger.Warn("Telemetry observer failed",
				zap.String("event_id", e.EventID),
				zap.Error(err),
			)
		}
	}
	return nil
}
