package session

import (
	"context"
	"sync/atomic"
	"time"

	"arenabook/internal/domain"
	"arenabook/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStore serves sessions from the primary store and falls back to a
// secondary when the primary errors. After a minute it probes the primary
// again on the next read.
type FailoverStore struct {
	primary   domain.SessionStore
	fallback  domain.SessionStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos of the last failed primary call
}

func NewFailoverStore(primary, fallback domain.SessionStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverStore) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverStore) shouldProbe() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > time.Minute
}

func (f *FailoverStore) Get(ctx context.Context, token string) (*models.Session, error) {
	if !f.isDown.Load() {
		session, err := f.primary.Get(ctx, token)
		if err == nil {
			return session, nil
		}
		f.markDown(err)
	} else if f.shouldProbe() {
		session, err := f.primary.Get(ctx, token)
		if err == nil {
			f.isDown.Store(false)
			return session, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.Get(ctx, token)
}

func (f *FailoverStore) Set(ctx context.Context, session *models.Session) error {
	if !f.isDown.Load() {
		err := f.primary.Set(ctx, session)
		if err == nil {
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Set(ctx, session)
}

func (f *FailoverStore) Delete(ctx context.Context, token string) error {
	if !f.isDown.Load() {
		err := f.primary.Delete(ctx, token)
		if err == nil {
			// Delete from the fallback too so a flapping primary cannot
			// resurrect a logged-out session.
			_ = f.fallback.Delete(ctx, token)
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Delete(ctx, token)
}

func (f *FailoverStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !f.isDown.Load() {
		allowed, err := f.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		f.markDown(err)
	}
	return f.fallback.CheckRateLimit(ctx, key, limit, window)
}
