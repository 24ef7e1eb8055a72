// Package reference serves the user's categories and payees. Both lists
// change rarely, so they are kept in the local cache and refreshed from the
// remote once their envelope expires.
package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reference
type Repository interface {
	ListCategories(ctx context.Context, user uuid.UUID) ([]Category, error)
	ListPayees(ctx context.Context, user uuid.UUID) ([]Payee, error)
}

type Service struct {
	repo  Repository
	cache *localcache.Store
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, cache *localcache.Store, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Categories(ctx context.Context, user uuid.UUID) ([]Category, error) {
	return cachedList(ctx, s, user, cachekey.KindCategories, s.repo.ListCategories, false)
}

func (s *Service) Payees(ctx context.Context, user uuid.UUID) ([]Payee, error) {
	return cachedList(ctx, s, user, cachekey.KindPayees, s.repo.ListPayees, false)
}

// Refresh re-reads both lists from the remote regardless of their age.
func (s *Service) Refresh(ctx context.Context, user uuid.UUID) error {
	if _, err := cachedList(ctx, s, user, cachekey.KindCategories, s.repo.ListCategories, true); err != nil {
		return err
	}

	if _, err := cachedList(ctx, s, user, cachekey.KindPayees, s.repo.ListPayees, true); err != nil {
		return err
	}

	return nil
}

// cachedList reads kind through the local cache. Concurrent misses for the
// same user and kind share one remote call.
func cachedList[T any](
	ctx context.Context,
	s *Service,
	user uuid.UUID,
	kind cachekey.Kind,
	fetch func(context.Context, uuid.UUID) ([]T, error),
	force bool,
) ([]T, error) {
	ttl := s.ttl
	if force {
		ttl = 0
	}

	items, err := localcache.ReadThrough(ctx, s.cache, user, kind, s.now(), ttl, func(ctx context.Context) ([]T, error) {
		v, err, _ := s.group.Do(cachekey.Key(user, kind), func() (any, error) {
			return fetch(ctx, user)
		})
		if err != nil {
			return nil, err
		}

		return v.([]T), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", kind, err)
	}

	return items, nil
}
