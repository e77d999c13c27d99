package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/FireRat666/Banter-Reversi/internal/config"
	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
	"github.com/FireRat666/Banter-Reversi/internal/game"
	"github.com/FireRat666/Banter-Reversi/internal/property"
	"github.com/FireRat666/Banter-Reversi/internal/render"
)

// publishWait bounds how long one-shot commands wait for their write to
// become visible in the store.
const publishWait = 5 * time.Second

// openStore connects to the configured property store.
func openStore(ctx context.Context, cfg config.Config) (property.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		user := cfg.User
		if user == "" {
			user = property.UUIDv7Generator{}.Generate()
		}
		return property.NewSpace().Join(user), nil

	case config.StoreSQLite:
		opts := []property.DBOption{property.WithDBPollInterval(cfg.Store.PollInterval)}
		if cfg.User != "" {
			opts = append(opts, property.WithIdentity(property.NewFixedGenerator(cfg.User)))
		}
		return property.OpenDB(cfg.Store.Path, opts...)

	case config.StoreRelay:
		return property.DialRemote(ctx, cfg.Store.URL)

	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}

// session is one coordinator attached to the configured store.
type session struct {
	store property.Store
	coord *coordinator.Coordinator
}

func (o *RootOptions) openSession(ctx context.Context, consumer render.Consumer) (*session, error) {
	store, err := openStore(ctx, o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open property store", err)
	}
	coord := coordinator.New(game.New(), store, consumer,
		coordinator.WithInstance(o.Config.InstanceName()),
		coordinator.WithPollInterval(o.Config.Sync.PollInterval),
		coordinator.WithReadyTimeout(o.Config.Sync.ReadyTimeout),
		coordinator.WithLogger(o.Logger()),
	)
	return &session{store: store, coord: coord}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// awaitIdentity waits for the store to identify the local participant, so
// that reads see the shared space.
func (s *session) awaitIdentity(ctx context.Context, timeout, poll time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if _, ok := s.store.LocalUser(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return coordinator.ErrNotReady
		case <-ticker.C:
		}
	}
}

// awaitPublished waits until the store holds the coordinator's current
// state and returns it. Relay writes are asynchronous; closing the
// connection before the echo arrives would lose them.
func (s *session) awaitPublished(ctx context.Context) (game.GameState, error) {
	ctx, cancel := context.WithTimeout(ctx, publishWait)
	defer cancel()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	want := s.coord.RenderState()
	for {
		v, ok, err := s.store.Get(ctx, s.coord.Key())
		if err != nil {
			return game.GameState{}, err
		}
		if ok {
			if st, err := game.Decode(v.Data); err == nil && render.Derive(st) == want {
				return st, nil
			}
		}
		select {
		case <-ctx.Done():
			return game.GameState{}, fmt.Errorf("waiting for %s to be published: %w", s.coord.Key(), ctx.Err())
		case <-ticker.C:
		}
	}
}
