package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/utils"
	"go.uber.org/zap"
)

var _ = Describe("eventbus", func() {

	var bus *EventBus

	BeforeEach(func() {
		bus = NewEventBus("node-a", zap.NewNop().Sugar())
		Expect(bus.Start()).To(Succeed())
	})

	AfterEach(func() {
		Expect(bus.Stop()).To(Succeed())
	})

	It("delivers local events to subscribers", func() {
		var mux sync.Mutex
		received := make([]string, 0)
		bus.Subscribe(EventShown, func(data interface{}) {
			mux.Lock()
			defer mux.Unlock()
			received = append(received, data.(*ShowableData).Key)
		})

		bus.Broadcast(EventShown, &ShowableData{Key: "rating", Time: time.Now()})
		bus.Broadcast(EventBlocked, &ShowableData{Key: "paywall", Time: time.Now()})

		Eventually(func() []string {
			mux.Lock()
			defer mux.Unlock()
			return append([]string(nil), received...)
		}).Should(Equal([]string{"rating"}))
	})

	It("clustering broadcast without cluster publishes locally only", func() {
		done := make(chan struct{})
		bus.Subscribe(EventStateInvalidate, func(data interface{}) {
			assert.Equal(GinkgoT(), "rating", data.(*InvalidateData).Key)
			close(done)
		})
		Expect(bus.ClusteringBroadcast(EventStateInvalidate, &InvalidateData{Key: "rating"})).To(Succeed())
		Eventually(done).Should(BeClosed())
	})

	It("dispatches cluster messages from other nodes only", func() {
		var keys []string
		bus.ClusteringSubscribe(EventStateInvalidate, func(data []byte) {
			var v InvalidateData
			Expect(json.Unmarshal(data, &v)).To(Succeed())
			keys = append(keys, v.Key)
		})

		remote, _ := json.Marshal(Message{Event: EventStateInvalidate, Node: "node-b", Data: []byte(`{"key":"rating"}`)})
		local, _ := json.Marshal(Message{Event: EventStateInvalidate, Node: "node-a", Data: []byte(`{"key":"paywall"}`)})
		bus.dispatch(remote)
		bus.dispatch(local)
		bus.dispatch([]byte("not json"))

		Expect(keys).To(Equal([]string{"rating"}))
	})

	It("recovers from a panicking cluster handler", func() {
		calls := 0
		bus.ClusteringSubscribe(EventStateInvalidate, func(data []byte) {
			panic("broken handler")
		})
		bus.ClusteringSubscribe(EventStateInvalidate, func(data []byte) {
			calls++
		})

		remote, _ := json.Marshal(Message{Event: EventStateInvalidate, Node: "node-b", Data: []byte(`{"key":"rating"}`)})
		Expect(func() { bus.dispatch(remote) }).NotTo(Panic())
		Expect(calls).To(Equal(1))
	})
})

func TestEventBus(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "EventBus Suite")
}

func TestRedisCluster(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis unavailable: %v", err)
	}
	defer client.Close()

	prefix := "showgate-test:" + utils.ShortID() + ":"
	a := NewEventBus("node-a", zap.NewNop().Sugar()).WithRedis(client, prefix)
	b := NewEventBus("node-b", zap.NewNop().Sugar()).WithRedis(client, prefix)
	require.NoError(t, a.Start())
	defer a.Stop()
	require.NoError(t, b.Start())
	defer b.Stop()

	var mux sync.Mutex
	var received []string
	record := func(node string) func(data []byte) {
		return func(data []byte) {
			var v InvalidateData
			if json.Unmarshal(data, &v) == nil {
				mux.Lock()
				received = append(received, node+":"+v.Key)
				mux.Unlock()
			}
		}
	}
	a.ClusteringSubscribe(EventStateInvalidate, record("a"))
	b.ClusteringSubscribe(EventStateInvalidate, record("b"))

	require.NoError(t, a.ClusteringBroadcast(EventStateInvalidate, &InvalidateData{Key: "rating"}))

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(received) == 1
	}, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, []string{"b:rating"}, received)
}
