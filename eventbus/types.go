package eventbus

import (
	"encoding/json"
	"time"
)

const (
	// EventStateInvalidate is broadcast across nodes when a showable state changes
	EventStateInvalidate = "state.invalidate"

	EventShown     = "showable.shown"
	EventBlocked   = "showable.blocked"
	EventUnblocked = "showable.unblocked"
	EventReset     = "showable.reset"
	EventNextShow  = "showable.next"
)

type Bus interface {
	ClusteringBroadcast(event string, data interface{}) error
	ClusteringSubscribe(event string, fn func(data []byte))
	Broadcast(event string, data interface{})
	Subscribe(event string, cb Callback)
}

// Message clustering message
type Message struct {
	Event string          `json:"event"`
	Time  int64           `json:"time"`
	Node  string          `json:"node"`
	Data  json.RawMessage `json:"data"`
}

type InvalidateData struct {
	Key string `json:"key"`
}

type ShowableData struct {
	Key  string     `json:"key"`
	Time time.Time  `json:"time,omitzero"`
	At   *time.Time `json:"at,omitempty"`
}

type Callback func(data interface{})
