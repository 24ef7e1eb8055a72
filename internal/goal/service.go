// Package goal manages savings goals.
package goal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=goal
type Repository interface {
	ListGoals(ctx context.Context, user uuid.UUID) ([]Goal, error)
	CreateGoal(ctx context.Context, user uuid.UUID, g *Goal) error
	UpdateGoal(ctx context.Context, user uuid.UUID, g *Goal) error
	DeleteGoal(ctx context.Context, user uuid.UUID, id uuid.UUID) error
}

type Service struct {
	repo  Repository
	cache *localcache.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewService(repo Repository, cache *localcache.Store, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context, user uuid.UUID) ([]Goal, error) {
	goals, err := localcache.ReadThrough(ctx, s.cache, user, cachekey.KindGoals, s.now(), s.ttl,
		func(ctx context.Context) ([]Goal, error) {
			return s.repo.ListGoals(ctx, user)
		})
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	return goals, nil
}

func (s *Service) Get(ctx context.Context, user uuid.UUID, id uuid.UUID) (*Goal, error) {
	goals, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}

	for i := range goals {
		if goals[i].ID == id {
			return &goals[i], nil
		}
	}

	return nil, ErrNotFound
}

func (s *Service) Create(ctx context.Context, user uuid.UUID, g *Goal) error {
	g.UserID = user
	if g.CurrentAmount.IsZero() {
		g.CurrentAmount = decimal.Zero
	}

	if err := g.Validate(); err != nil {
		return err
	}

	if err := s.repo.CreateGoal(ctx, user, g); err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

func (s *Service) Update(ctx context.Context, user uuid.UUID, g *Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	if err := s.repo.UpdateGoal(ctx, user, g); err != nil {
		return fmt.Errorf("updating goal: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

func (s *Service) Delete(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeleteGoal(ctx, user, id); err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

// Contribute adds amount to the goal's saved total. A negative amount
// withdraws, but never below zero.
func (s *Service) Contribute(ctx context.Context, user uuid.UUID, id uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: contribution must not be zero", ErrInvalid)
	}

	g, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	updated := *g
	updated.CurrentAmount = g.CurrentAmount.Add(amount)

	if updated.CurrentAmount.IsNegative() {
		return nil, fmt.Errorf("%w: withdrawal exceeds saved amount %s", ErrInvalid, g.CurrentAmount.StringFixed(2))
	}

	if err := s.Update(ctx, user, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *Service) invalidate(ctx context.Context, user uuid.UUID) {
	blobs, err := s.cache.Blobs(user)
	if err != nil {
		return
	}

	if err := blobs.Invalidate(ctx, cachekey.KindGoals); err != nil {
		slog.WarnContext(ctx, "failed to invalidate cached goals", "error", err)
	}
}
