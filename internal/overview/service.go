// Package overview assembles the dashboard and summary views.
package overview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

// RecentDays is how many days of transactions the dashboard lists.
const RecentDays = 7

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=overview
type Repository interface {
	// OverviewStats returns the raw JSON result of the remote procedure.
	OverviewStats(ctx context.Context, user uuid.UUID) ([]byte, error)
}

type TransactionSource interface {
	Load(ctx context.Context, user uuid.UUID) ([]*transaction.Transaction, error)
}

type Service struct {
	repo     Repository
	cache    *localcache.Store
	txs      TransactionSource
	statsTTL time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, cache *localcache.Store, txs TransactionSource, statsTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    cache,
		txs:      txs,
		statsTTL: statsTTL,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Dashboard(ctx context.Context, user uuid.UUID) (*Dashboard, error) {
	txs, err := s.txs.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	today := s.now()

	recent := aggregate.GroupByDate(aggregate.SortByTimestamp(txs))
	if len(recent) > RecentDays {
		recent = recent[:RecentDays]
	}

	return &Dashboard{
		Remaining:     aggregate.RemainingForPeriod(txs, aggregate.MonthOf(today)),
		DailyLimit:    aggregate.ComputeDailyLimit(txs, today),
		TopCategories: aggregate.TopCategories(txs, today),
		PayDay:        aggregate.PayDayCountdown(today),
		NetWorth:      aggregate.NetWorth(txs),
		Recent:        recent,
	}, nil
}

// Stats returns the remote overview figures, cached until the TTL passes or
// the day changes.
func (s *Service) Stats(ctx context.Context, user uuid.UUID) (Stats, error) {
	stats, err := localcache.ReadThrough(ctx, s.cache, user, cachekey.KindOverviewStats, s.now(), s.statsTTL,
		func(ctx context.Context) (Stats, error) {
			raw, err := s.repo.OverviewStats(ctx, user)
			if err != nil {
				return Stats{}, err
			}

			return DecodeStats(raw)
		})
	if err != nil {
		return Stats{}, fmt.Errorf("fetching overview stats: %w", err)
	}

	return stats, nil
}

// Summaries rolls up p by category and payee, with monthly figures for the
// year p starts in and yearly figures over all time.
func (s *Service) Summaries(ctx context.Context, user uuid.UUID, p aggregate.Period) (*Summaries, error) {
	txs, err := s.txs.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return &Summaries{
		Period:            p,
		Monthly:           aggregate.MonthlySummaries(txs, p.Start.Year()),
		Yearly:            aggregate.YearlySummaries(txs),
		ExpenseByCategory: aggregate.CategorySummary(txs, transaction.TypeExpense, p),
		IncomeByCategory:  aggregate.CategorySummary(txs, transaction.TypeIncome, p),
		ExpenseByPayee:    aggregate.PayeeSummary(txs, transaction.TypeExpense, p),
	}, nil
}
