package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/showgate/config"
	"github.com/webhookx-io/showgate/config/modules"
	"github.com/webhookx-io/showgate/db"
	"github.com/webhookx-io/showgate/db/migrator"
	"github.com/webhookx-io/showgate/eventbus"
	"github.com/webhookx-io/showgate/mcache"
	"github.com/webhookx-io/showgate/pkg/cache"
	"github.com/webhookx-io/showgate/pkg/log"
	"github.com/webhookx-io/showgate/pkg/serializer"
	"github.com/webhookx-io/showgate/policy"
	"github.com/webhookx-io/showgate/store/cached"
	"github.com/webhookx-io/showgate/store/file"
	"github.com/webhookx-io/showgate/store/memory"
	redisstore "github.com/webhookx-io/showgate/store/redis"
	"github.com/webhookx-io/showgate/utils"
	"go.uber.org/zap"
)

var (
	ErrApplicationClosed = errors.New("already closed")
)

// Application wires the configured state backend and the named policies.
type Application struct {
	nodeID string

	cfg *config.Config

	mux    sync.Mutex
	closed bool

	log    *zap.SugaredLogger
	store  policy.StateStore
	db     *db.DB
	redis  *redis.Client
	bus    *eventbus.EventBus
	locker policy.Locker

	policies map[string]*policy.Policy
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		nodeID:   utils.UUID(),
		cfg:      cfg,
		policies: make(map[string]*policy.Policy),
	}

	if err := app.initialize(); err != nil {
		_ = app.release()
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	log, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	app.log = log

	app.bus = eventbus.NewEventBus(app.nodeID, log)

	store, err := app.openStore()
	if err != nil {
		return err
	}

	if cfg.Store.Cache.Enabled {
		var l2 cache.Cache
		if cfg.Store.Cache.L2 {
			l2 = cache.NewRedisCache(app.redisClient(), cfg.Redis.KeyPrefix)
		}
		c := mcache.NewMCache(&mcache.Options{
			L1Size: cfg.Store.Cache.L1Size,
			L1TTL:  cfg.Store.Cache.L1TTL,
			L2:     l2,
			L2TTL:  cfg.Store.Cache.L2TTL,
		})
		store = cached.New(store, c, app.bus, log)
	}
	app.store = store

	if err := app.bus.Start(); err != nil {
		return err
	}

	for name, def := range cfg.Policies {
		app.policies[name] = app.newPolicy(name, def)
	}

	return nil
}

func (app *Application) openStore() (policy.StateStore, error) {
	cfg := app.cfg
	switch cfg.Store.Driver {
	case modules.StoreDriverMemory:
		return memory.New(), nil
	case modules.StoreDriverFile:
		s, err := serializer.ByName(string(cfg.Store.File.Format))
		if err != nil {
			return nil, err
		}
		return file.Open(cfg.Store.File.Path, s)
	case modules.StoreDriverRedis:
		client := app.redisClient()
		if cfg.Store.Lock.Enabled {
			app.locker = redisstore.NewLocker(client, cfg.Redis.KeyPrefix, cfg.Store.Lock.Expiry, cfg.Store.Lock.Tries)
		}
		if cfg.EventBus.Cluster {
			app.bus.WithRedis(client, cfg.Redis.KeyPrefix)
		}
		return redisstore.NewStore(client, cfg.Redis.KeyPrefix), nil
	case modules.StoreDriverPostgres:
		sqlDB, err := db.NewSqlDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		app.db = db.NewDB(sqlDB, db.DriverPostgres, app.log)
		if cfg.EventBus.Cluster {
			app.bus.WithCluster(cfg.Database.GetDSN(), sqlDB)
		}
	case modules.StoreDriverSqlite:
		sqlDB, err := db.NewSqliteDB(cfg.Sqlite)
		if err != nil {
			return nil, err
		}
		app.db = db.NewDB(sqlDB, db.DriverSqlite, app.log)
	default:
		return nil, fmt.Errorf("invalid driver: %s", cfg.Store.Driver)
	}

	if err := app.checkMigrations(); err != nil {
		return nil, err
	}
	return db.NewStore(app.db), nil
}

func (app *Application) checkMigrations() error {
	m := migrator.New(app.db.SqlDB(), &migrator.Options{Driver: app.db.DriverName(), Quiet: true})
	status, err := m.Status()
	if err != nil {
		return err
	}
	if status.Dirty {
		return fmt.Errorf("database is in a dirty state at version %d", status.Version)
	}
	if status.Version == 0 {
		return errors.New("database is not initialized. Run 'showgate migrations up' first")
	}
	return nil
}

func (app *Application) redisClient() *redis.Client {
	if app.redis == nil {
		app.redis = app.cfg.Redis.GetClient()
	}
	return app.redis
}

func (app *Application) newPolicy(name string, def modules.PolicyConfig, extra ...policy.Option) *policy.Policy {
	opts := []policy.Option{
		policy.WithLogger(app.log),
		policy.WithBus(app.bus),
	}
	if app.locker != nil {
		opts = append(opts, policy.WithLocker(app.locker))
	}
	opts = append(opts, extra...)
	return policy.New(utils.DefaultIfZero(def.Key, name), app.store, policy.Config{
		Mode:                         policy.Mode(def.Mode),
		MinimumTimeBetweenShows:      def.MinimumTimeBetweenShows,
		MinimumTimeSinceFirstRequest: def.MinimumTimeSinceFirstRequest,
	}, opts...)
}

// Policy returns the named policy. Extra options build a dedicated
// instance sharing the same backend.
func (app *Application) Policy(name string, opts ...policy.Option) (*policy.Policy, error) {
	p, ok := app.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown policy: '%s'", name)
	}
	if len(opts) > 0 {
		def, err := app.cfg.Policy(name)
		if err != nil {
			return nil, err
		}
		return app.newPolicy(name, def, opts...), nil
	}
	return p, nil
}

// Policies returns the configured policy names in order.
func (app *Application) Policies() []string {
	names := make([]string, 0, len(app.policies))
	for name := range app.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (app *Application) Store() policy.StateStore {
	return app.store
}

func (app *Application) DB() *db.DB {
	return app.db
}

func (app *Application) Config() *config.Config {
	return app.cfg
}

// Ping checks the remote backends.
func (app *Application) Ping(ctx context.Context) error {
	if app.db != nil {
		if err := app.db.Ping(); err != nil {
			return err
		}
	}
	if app.redis != nil {
		resp := app.redis.Ping(ctx)
		if resp.Err() != nil {
			return resp.Err()
		}
		if resp.Val() != "PONG" {
			return errors.New("invalid response from redis: " + resp.Val())
		}
	}
	return nil
}

// Close releases the backends
func (app *Application) Close() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.closed {
		return ErrApplicationClosed
	}
	app.closed = true

	err := app.release()
	if app.log != nil {
		_ = app.log.Sync()
	}
	return err
}

func (app *Application) release() error {
	var errs []error
	if app.bus != nil {
		errs = append(errs, app.bus.Stop())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}
