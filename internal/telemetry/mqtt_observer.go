package telemetry

import (
	"context"
	"fmt"
)

// DefaultTopic is the MQTT topic prediction events are published to.
const DefaultTopic = "disease-detector/predictions"

// Publisher is the part of the MQTT client the observer needs.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// MQTTObserver publishes each event as JSON to an MQTT topic.
type MQTTObserver struct {
	publisher Publisher
	topic     string
}

// NewMQTTObserver 创建 MQTT 观察者
func NewMQTTObserver(p Publisher, topic string) *MQTTObserver {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTObserver{publisher: p, topic: topic}
}

// Observe 发布事件
func (o *MQTTObserver) Observe(_ context.Context, e Event) error {
	if err := o.publisher.PublishJSON(o.topic, e); err != nil {
		return fmt.Errorf("publish event to %s: %w", o.topic, err)
	}
	return nil
}
