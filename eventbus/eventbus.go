package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/showgate/pkg/safe"
	"go.uber.org/zap"
)

const channelName = "showgate"

var _ Bus = &EventBus{}

// EventBus publishes in-process events, and clustering events through
// postgres LISTEN/NOTIFY or redis pub/sub when a cluster backend is attached.
type EventBus struct {
	ctx      context.Context
	cancel   context.CancelFunc
	nodeID   string
	log      *zap.SugaredLogger
	channel  string
	listener *pq.Listener
	redis    *redis.Client
	pubsub   *redis.PubSub
	mux      sync.Mutex
	handlers map[string][]func(data []byte)
	bus      evbus.Bus
	db       *sql.DB
}

func NewEventBus(nodeID string, log *zap.SugaredLogger) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := EventBus{
		ctx:      ctx,
		cancel:   cancel,
		bus:      evbus.New(),
		nodeID:   nodeID,
		channel:  channelName,
		handlers: make(map[string][]func(data []byte)),
		log:      log.Named("eventbus"),
	}

	return &bus
}

// WithCluster enables clustering broadcast over the postgres database.
func (bus *EventBus) WithCluster(dsn string, db *sql.DB) *EventBus {
	bus.listener = pq.NewListener(dsn, time.Millisecond*100, time.Second*30, nil)
	bus.db = db
	return bus
}

// WithRedis enables clustering broadcast over redis pub/sub, on a channel
// named after prefix.
func (bus *EventBus) WithRedis(client *redis.Client, prefix string) *EventBus {
	bus.redis = client
	bus.channel = prefix + channelName
	return bus
}

func (bus *EventBus) Clustered() bool {
	return bus.listener != nil || bus.redis != nil
}

func (bus *EventBus) Start() error {
	switch {
	case bus.listener != nil:
		if err := bus.listener.Listen(bus.channel); err != nil {
			return fmt.Errorf("failed to listen on channel %s: %w", bus.channel, err)
		}
		safe.Go(bus.log, "eventbus", bus.listenClusterLoop)
	case bus.redis != nil:
		bus.pubsub = bus.redis.Subscribe(bus.ctx, bus.channel)
		if _, err := bus.pubsub.Receive(bus.ctx); err != nil {
			return fmt.Errorf("failed to subscribe to channel %s: %w", bus.channel, err)
		}
		safe.Go(bus.log, "eventbus", bus.listenRedisLoop)
	default:
		return nil
	}
	bus.log.Infof(`listening on channel "%s"`, bus.channel)
	return nil
}

func (bus *EventBus) Stop() error {
	bus.cancel()
	bus.bus.WaitAsync()
	switch {
	case bus.listener != nil:
		return bus.listener.Close()
	case bus.pubsub != nil:
		return bus.pubsub.Close()
	}
	return nil
}

func (bus *EventBus) listenClusterLoop() {
	timeoutDuration := 5 * time.Second
	timeout := time.NewTimer(timeoutDuration)
	defer timeout.Stop()
	for {
		timeout.Reset(timeoutDuration)
		select {
		case <-bus.ctx.Done():
			return
		case n := <-bus.listener.NotificationChannel():
			if n == nil {
				// reconnected
				continue
			}
			bus.dispatch([]byte(n.Extra))
		case <-timeout.C:
			err := bus.listener.Ping()
			if err != nil {
				bus.log.Errorf("failed to ping database: %v", err)
			}
		}
	}
}

func (bus *EventBus) listenRedisLoop() {
	ch := bus.pubsub.Channel()
	for {
		select {
		case <-bus.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			bus.dispatch([]byte(msg.Payload))
		}
	}
}

func (bus *EventBus) dispatch(payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		bus.log.Errorf("failed to unmarshal message: %s", err)
		return
	}
	if msg.Node == bus.nodeID {
		return
	}
	bus.log.Debugf("dispatch cluster message: %s", string(payload))
	bus.mux.Lock()
	handlers := bus.handlers[msg.Event]
	bus.mux.Unlock()
	for _, handler := range handlers {
		if err := safe.Run(func() { handler(msg.Data) }); err != nil {
			bus.log.Errorf("handler for %s failed: %v", msg.Event, err)
		}
	}
}

// ClusteringBroadcast publishes data locally and, when clustered, notifies
// every other node.
func (bus *EventBus) ClusteringBroadcast(event string, data interface{}) error {
	bus.bus.Publish(event, data)

	if !bus.Clustered() {
		return nil
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		bus.log.Errorf("failed to marshal data: %v", err)
		return err
	}
	msg := Message{
		Event: event,
		Time:  time.Now().UnixMilli(),
		Node:  bus.nodeID,
		Data:  bytes,
	}
	bytes, err = json.Marshal(msg)
	if err != nil {
		bus.log.Errorf("failed to marshal message: %v", err)
		return err
	}

	bus.log.Debugf("broadcasting cluster message: %s", string(bytes))

	if bus.redis != nil {
		err = bus.redis.Publish(context.TODO(), bus.channel, bytes).Err()
	} else {
		statement := fmt.Sprintf("NOTIFY %s, %s", bus.channel, pq.QuoteLiteral(string(bytes)))
		_, err = bus.db.ExecContext(context.TODO(), statement)
	}
	if err != nil {
		bus.log.Errorf("failed to broadcast message: %v", err)
	}
	return err
}

// ClusteringSubscribe registers fn for events coming from other nodes.
func (bus *EventBus) ClusteringSubscribe(event string, fn func(data []byte)) {
	bus.mux.Lock()
	defer bus.mux.Unlock()

	bus.handlers[event] = append(bus.handlers[event], fn)
}

func (bus *EventBus) Broadcast(event string, data interface{}) {
	bus.bus.Publish(event, data)
}

func (bus *EventBus) Subscribe(event string, cb Callback) {
	_ = bus.bus.SubscribeAsync(event, cb, false)
}
