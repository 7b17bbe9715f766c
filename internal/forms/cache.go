package forms

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/guestdesk/backend/internal/models"
)

const (
	cacheKeyPrefix = "form:"
	loadTimeout    = 10 * time.Second
)

// CachedStore reads templates through Redis. Writes go to the wrapped store and
// evict the affected name. Redis failures fall back to the wrapped store.
type CachedStore struct {
	Store
	rdb    redis.Cmdable
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger

	mu       sync.Mutex
	versions map[string]uint64 // bumped on every eviction
}

// NewCachedStore wraps store. A nil rdb disables caching.
func NewCachedStore(store Store, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{Store: store, rdb: rdb, ttl: ttl, logger: logger, versions: make(map[string]uint64)}
}

func cacheKey(name string) string { return cacheKeyPrefix + name }

// GetByName returns the named form, from cache when present.
func (s *CachedStore) GetByName(ctx context.Context, name string) (*models.Form, error) {
	name = NormalizeName(name)
	if s.rdb == nil {
		return s.Store.GetByName(ctx, name)
	}
	if f, ok := s.lookup(ctx, name); ok {
		return f, nil
	}
	// The shared load outlives any single caller; each caller still honors its own ctx.
	ch := s.group.DoChan(name, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(loadCtx, name)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		cp := *res.Val.(*models.Form)
		return &cp, nil
	}
}

func (s *CachedStore) load(ctx context.Context, name string) (*models.Form, error) {
	version := s.version(name)
	f, err := s.Store.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, f)
	// A write evicted the name while the row was in flight.
	if s.version(name) != version {
		s.del(ctx, name)
	}
	return f, nil
}

func (s *CachedStore) version(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[name]
}

// Create stores a new form and evicts any cached entry under its name.
func (s *CachedStore) Create(ctx context.Context, name, content string, authorID int64) (*models.Form, error) {
	f, err := s.Store.Create(ctx, name, content, authorID)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, f.Name)
	return f, nil
}

// Update changes a form and evicts its cache entry.
func (s *CachedStore) Update(ctx context.Context, id int64, content string, editorID int64) (*models.Form, error) {
	f, err := s.Store.Update(ctx, id, content, editorID)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, f.Name)
	return f, nil
}

// Delete removes a form and evicts its cache entry.
func (s *CachedStore) Delete(ctx context.Context, id int64) (*models.Form, error) {
	f, err := s.Store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, f.Name)
	return f, nil
}

func (s *CachedStore) lookup(ctx context.Context, name string) (*models.Form, bool) {
	raw, err := s.rdb.Get(ctx, cacheKey(name)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("form cache read failed", zap.String("form", name), zap.Error(err))
		}
		return nil, false
	}
	var f models.Form
	if err := json.Unmarshal(raw, &f); err != nil {
		s.logger.Warn("form cache entry corrupt", zap.String("form", name), zap.Error(err))
		return nil, false
	}
	return &f, true
}

func (s *CachedStore) fill(ctx context.Context, f *models.Form) {
	raw, err := json.Marshal(f)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey(f.Name), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("form cache write failed", zap.String("form", f.Name), zap.Error(err))
	}
}

func (s *CachedStore) evict(ctx context.Context, name string) {
	if s.rdb == nil {
		return
	}
	s.mu.Lock()
	s.versions[name]++
	s.mu.Unlock()
	s.group.Forget(name)
	s.del(ctx, name)
}

func (s *CachedStore) del(ctx context.Context, name string) {
	if err := s.rdb.Del(ctx, cacheKey(name)).Err(); err != nil {
		s.logger.Warn("form cache evict failed", zap.String("form", name), zap.Error(err))
	}
}
