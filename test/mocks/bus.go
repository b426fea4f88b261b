package mocks

import "github.com/webhookx-io/showgate/eventbus"

type MockBus struct{}

func (m MockBus) ClusteringBroadcast(event string, data interface{}) error {
	return nil
}

func (m MockBus) ClusteringSubscribe(event string, fn func(data []byte)) {
}

func (m MockBus) Broadcast(event string, data interface{}) {
}

func (m MockBus) Subscribe(event string, cb eventbus.Callback) {
}

// RecordingBus records local broadcasts in order.
type RecordingBus struct {
	MockBus
	Events []string
	Data   []interface{}
}

func (m *RecordingBus) Broadcast(event string, data interface{}) {
	m.Events = append(m.Events, event)
	m.Data = append(m.Data, data)
}
