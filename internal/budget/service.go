// Package budget manages monthly spending budgets and reports how much of
// each has been consumed, computed from the local transaction mirror.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	ListBudgets(ctx context.Context, user uuid.UUID) ([]Budget, error)
	CreateBudget(ctx context.Context, user uuid.UUID, b *Budget) error
	UpdateBudget(ctx context.Context, user uuid.UUID, b *Budget) error
	DeleteBudget(ctx context.Context, user uuid.UUID, id uuid.UUID) error
}

// TransactionSource yields the user's full transaction list.
type TransactionSource interface {
	Load(ctx context.Context, user uuid.UUID) ([]*transaction.Transaction, error)
}

type Service struct {
	repo  Repository
	cache *localcache.Store
	txs   TransactionSource
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, cache *localcache.Store, txs TransactionSource, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: cache,
		txs:   txs,
		ttl:   ttl,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) List(ctx context.Context, user uuid.UUID) ([]Budget, error) {
	budgets, err := localcache.ReadThrough(ctx, s.cache, user, cachekey.KindBudgets, s.now(), s.ttl,
		func(ctx context.Context) ([]Budget, error) {
			return s.repo.ListBudgets(ctx, user)
		})
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}

	return budgets, nil
}

func (s *Service) Get(ctx context.Context, user uuid.UUID, id uuid.UUID) (*Budget, error) {
	budgets, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}

	for i := range budgets {
		if budgets[i].ID == id {
			return &budgets[i], nil
		}
	}

	return nil, ErrNotFound
}

func (s *Service) Create(ctx context.Context, user uuid.UUID, b *Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	b.StartDate = transaction.DateOnly(b.StartDate)

	if err := s.repo.CreateBudget(ctx, user, b); err != nil {
		return fmt.Errorf("creating budget: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

func (s *Service) Update(ctx context.Context, user uuid.UUID, b *Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}

	b.StartDate = transaction.DateOnly(b.StartDate)

	if err := s.repo.UpdateBudget(ctx, user, b); err != nil {
		return fmt.Errorf("updating budget: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

func (s *Service) Delete(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeleteBudget(ctx, user, id); err != nil {
		return fmt.Errorf("deleting budget: %w", err)
	}

	s.invalidate(ctx, user)

	return nil
}

// AmountMap returns the monthly expense per budgeted category, rebuilt from
// the transaction mirror when the cached copy is stale.
func (s *Service) AmountMap(ctx context.Context, user uuid.UUID) (map[aggregate.MonthKey]decimal.Decimal, error) {
	budgets, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()

	return localcache.ReadThrough(ctx, s.cache, user, cachekey.KindBudgetAmountMap, now, s.ttl,
		func(ctx context.Context) (map[aggregate.MonthKey]decimal.Decimal, error) {
			txs, err := s.txs.Load(ctx, user)
			if err != nil {
				return nil, fmt.Errorf("loading transactions: %w", err)
			}

			return aggregate.BudgetAmountMap(txs, categoryIDs(budgets), now), nil
		})
}

// Statuses reports the consumption of every budget active in month.
func (s *Service) Statuses(ctx context.Context, user uuid.UUID, month time.Time) ([]Status, error) {
	budgets, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}

	amounts, err := s.AmountMap(ctx, user)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, 0, len(budgets))

	for _, b := range budgets {
		if !b.ActiveIn(month) {
			continue
		}

		statuses = append(statuses, status(b, amounts, month))
	}

	return statuses, nil
}

// History reports one budget's consumption for every month from its start
// through the current month, most recent first.
func (s *Service) History(ctx context.Context, user uuid.UUID, id uuid.UUID) ([]Status, error) {
	b, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	amounts, err := s.AmountMap(ctx, user)
	if err != nil {
		return nil, err
	}

	start := aggregate.MonthOf(b.StartDate).Start

	var history []Status

	for m := aggregate.MonthOf(s.now()).Start; !m.Before(start); m = m.AddDate(0, -1, 0) {
		history = append(history, status(*b, amounts, m))
	}

	return history, nil
}

func status(b Budget, amounts map[aggregate.MonthKey]decimal.Decimal, month time.Time) Status {
	return Status{
		Budget:      b,
		Consumption: aggregate.BudgetConsumption(amounts, b.CategoryIDs, month, b.Amount),
		Year:        month.Year(),
		Month:       month.Month(),
	}
}

func (s *Service) invalidate(ctx context.Context, user uuid.UUID) {
	blobs, err := s.cache.Blobs(user)
	if err != nil {
		return
	}

	if err := blobs.Invalidate(ctx, cachekey.KindBudgets, cachekey.KindBudgetAmountMap); err != nil {
		slog.WarnContext(ctx, "failed to invalidate cached budgets", "error", err)
	}
}

func categoryIDs(budgets []Budget) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})

	var ids []uuid.UUID

	for _, b := range budgets {
		for _, id := range b.CategoryIDs {
			if _, ok := seen[id]; ok {
				continue
			}

			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	return ids
}
