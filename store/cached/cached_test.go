package cached

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/webhookx-io/showgate/eventbus"
	"github.com/webhookx-io/showgate/mcache"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/store/memory"
	"github.com/webhookx-io/showgate/store/storetest"
	"go.uber.org/zap"
)

type countingStore struct {
	*memory.Store
	gets   int
	getErr error
}

func (s *countingStore) Get(ctx context.Context, key string) (policy.State, error) {
	s.gets++
	if s.getErr != nil {
		return policy.State{}, s.getErr
	}
	return s.Store.Get(ctx, key)
}

type recordingBus struct {
	eventbus.Bus
	broadcasts []string
	handlers   map[string]func([]byte)
}

func (b *recordingBus) ClusteringBroadcast(event string, data interface{}) error {
	b.broadcasts = append(b.broadcasts, data.(*eventbus.InvalidateData).Key)
	return nil
}

func (b *recordingBus) ClusteringSubscribe(event string, fn func(data []byte)) {
	b.handlers[event] = fn
}

var _ = Describe("cached store", func() {
	var backend *countingStore
	var bus *recordingBus
	var store *Store
	ctx := context.TODO()

	BeforeEach(func() {
		backend = &countingStore{Store: memory.New()}
		bus = &recordingBus{handlers: make(map[string]func([]byte))}
		store = New(backend, mcache.NewMCache(&mcache.Options{L1Size: 10, L1TTL: time.Minute}), bus, zap.NewNop().Sugar())
	})

	It("reads through the cache", func() {
		for i := 0; i < 3; i++ {
			state, err := store.Get(ctx, "rating")
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(policy.State{}))
		}
		Expect(backend.gets).To(Equal(1))
	})

	It("invalidates on write and broadcasts", func() {
		_, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())

		Expect(store.SetBlocked(ctx, "rating", true)).To(Succeed())
		state, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Blocked).To(BeTrue())
		Expect(backend.gets).To(Equal(2))
		Expect(bus.broadcasts).To(Equal([]string{"rating"}))
	})

	It("returns copies of cached states", func() {
		Expect(store.SetLastShownAt(ctx, "rating", &storetest.Base)).To(Succeed())
		state, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		*state.LastShownAt = state.LastShownAt.Add(time.Hour)

		state, err = store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.LastShownAt.Equal(storetest.Base)).To(BeTrue())
	})

	It("invalidates L1 on remote events", func() {
		_, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())

		// a remote node wrote the shared backend
		Expect(backend.Store.SetBlocked(ctx, "rating", true)).To(Succeed())
		data, _ := json.Marshal(eventbus.InvalidateData{Key: "rating"})
		bus.handlers[eventbus.EventStateInvalidate](data)

		state, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Blocked).To(BeTrue())
	})

	It("reads committing checks from the backend", func() {
		// two nodes share the backend and never hear of each other's writes
		shared := memory.New()
		nodeA := New(shared, mcache.NewMCache(&mcache.Options{L1Size: 10, L1TTL: time.Minute}), nil, zap.NewNop().Sugar())
		nodeB := New(shared, mcache.NewMCache(&mcache.Options{L1Size: 10, L1TTL: time.Minute}), nil, zap.NewNop().Sugar())
		cfg := policy.Config{MinimumTimeBetweenShows: time.Hour}
		policyA := policy.New("rating", nodeA, cfg)
		policyB := policy.New("rating", nodeB, cfg)

		ok, err := policyB.CanShow(ctx, storetest.Base, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		_, err = nodeB.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())

		ok, err = policyA.CanShow(ctx, storetest.Base.Add(time.Second), true)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = policyB.CanShow(ctx, storetest.Base.Add(2*time.Second), true)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		// the direct read dropped node B's stale copy
		state, err := nodeB.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.LastShownAt).NotTo(BeNil())
	})

	It("GetDirect bypasses the cache", func() {
		_, err := store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(backend.Store.SetBlocked(ctx, "rating", true)).To(Succeed())

		state, err := store.GetDirect(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(state.Blocked).To(BeTrue())
		Expect(backend.gets).To(Equal(2))
	})

	It("does not cache backend errors", func() {
		backend.getErr = errors.New("connection refused")
		_, err := store.Get(ctx, "rating")
		Expect(err).To(MatchError("connection refused"))

		backend.getErr = nil
		_, err = store.Get(ctx, "rating")
		Expect(err).NotTo(HaveOccurred())
		Expect(backend.gets).To(Equal(2))
	})
})

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) policy.StateStore {
		cache := mcache.NewMCache(&mcache.Options{L1Size: 10, L1TTL: time.Minute})
		return New(memory.New(), cache, nil, zap.NewNop().Sugar())
	})
}

func TestCached(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cached Store Suite")
}
