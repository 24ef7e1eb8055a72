package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/cachekey"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
)

// Repository is the remote transaction table. Writes fill in the server
// generated id and the denormalised category and payee fields.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, user uuid.UUID, tx *Transaction) error
	CreateTransactions(ctx context.Context, user uuid.UUID, txs []*Transaction) error
	GetTransaction(ctx context.Context, user uuid.UUID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, user uuid.UUID, tx *Transaction) error
	DeleteTransaction(ctx context.Context, user uuid.UUID, id uuid.UUID) error
	FetchTransactionsPage(ctx context.Context, user uuid.UUID, search string, limit, offset int) ([]*Transaction, error)
}

// Source yields the user's complete transaction list. It must refuse to
// answer while the list is being rebuilt rather than return part of it.
type Source interface {
	Load(ctx context.Context, user uuid.UUID) ([]*Transaction, error)
}

// DerivedKinds are the cached aggregates that go stale whenever a
// transaction changes.
var DerivedKinds = []cachekey.Kind{cachekey.KindBudgetAmountMap, cachekey.KindOverviewStats}

type Service struct {
	repo     Repository
	cache    *localcache.Store
	existing Source
}

// NewService builds the service. existing backs duplicate detection in
// ImportBatch.
func NewService(repo Repository, cache *localcache.Store, existing Source) *Service {
	return &Service{repo: repo, cache: cache, existing: existing}
}

type CreateParams struct {
	Amount      decimal.Decimal
	Type        Type
	Date        time.Time
	Timestamp   time.Time
	CategoryID  uuid.UUID
	PayeeID     *uuid.UUID
	Description *string
}

// Validate rejects incomplete form data before anything reaches the network.
func (p CreateParams) Validate() error {
	return validate(p.Amount, p.Type, p.Date, p.CategoryID)
}

func validate(amount decimal.Decimal, typ Type, date time.Time, categoryID uuid.UUID) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	case !typ.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, typ)
	case date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	case categoryID == uuid.Nil:
		return fmt.Errorf("%w: category is required", ErrInvalid)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, user uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx := paramsToTransaction(params)
	if err := s.repo.CreateTransaction(ctx, user, tx); err != nil {
		return nil, err
	}

	s.mirrorPut(ctx, user, tx)

	return tx, nil
}

// Get prefers the local mirror and falls back to the remote row.
func (s *Service) Get(ctx context.Context, user uuid.UUID, id uuid.UUID) (*Transaction, error) {
	col, err := s.collection(user)
	if err == nil {
		tx, ok, err := col.Get(ctx, id.String())
		if err == nil && ok {
			return tx, nil
		}
	}

	return s.repo.GetTransaction(ctx, user, id)
}

func (s *Service) Update(ctx context.Context, user uuid.UUID, tx *Transaction) error {
	if err := validate(tx.Amount, tx.Type, tx.Date, tx.CategoryID); err != nil {
		return err
	}

	tx.Amount = CanonicalAmount(tx.Amount)

	if err := s.repo.UpdateTransaction(ctx, user, tx); err != nil {
		return err
	}

	s.mirrorPut(ctx, user, tx)

	return nil
}

func (s *Service) Delete(ctx context.Context, user uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, user, id); err != nil {
		return err
	}

	col, err := s.collection(user)
	if err != nil {
		slog.WarnContext(ctx, "local cache unavailable, deleted transaction not mirrored", "id", id, "error", err)
		return nil
	}

	if err := col.Delete(ctx, id.String()); err != nil {
		slog.WarnContext(ctx, "failed to drop transaction from local cache", "id", id, "error", err)
	}

	s.invalidateDerived(ctx, user)

	return nil
}

type ImportResult struct {
	Imported  []*Transaction
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Transaction
}

// ImportBatch creates params unless any of them look like a transaction the
// user already has; in that case nothing is written and the split between new
// rows and conflicts is returned for the caller to confirm.
func (s *Service) ImportBatch(ctx context.Context, user uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	existing, err := s.existing.Load(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("loading transactions for duplicate check: %w", err)
	}

	lookup := make(map[dupKey]*Transaction, len(existing))
	for _, tx := range existing {
		lookup[keyOf(tx.Date, tx.Amount, tx.Type, tx.DescriptionText())] = tx
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		found, ok := lookup[keyOf(p.Date, p.Amount, p.Type, deref(p.Description))]
		if ok {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: found})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	txs, err := s.CreateBatch(ctx, user, newParams)
	if err != nil {
		return nil, err
	}

	return &ImportResult{Imported: txs}, nil
}

// CreateBatch writes params to the remote in one call and mirrors the result.
func (s *Service) CreateBatch(ctx context.Context, user uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	txs := make([]*Transaction, len(params))

	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txs[i] = paramsToTransaction(p)
	}

	if err := s.repo.CreateTransactions(ctx, user, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	col, err := s.collection(user)
	if err != nil {
		slog.WarnContext(ctx, "local cache unavailable, created transactions not mirrored", "count", len(txs), "error", err)
		return txs, nil
	}

	if err := col.PutMany(ctx, txs, func(tx *Transaction) string { return tx.ID.String() }); err != nil {
		slog.WarnContext(ctx, "failed to mirror created transactions", "count", len(txs), "error", err)
	}

	s.invalidateDerived(ctx, user)

	return txs, nil
}

func (s *Service) collection(user uuid.UUID) (*localcache.Collection[*Transaction], error) {
	return localcache.OpenCollection[*Transaction](s.cache, user, cachekey.KindTransactions)
}

func (s *Service) mirrorPut(ctx context.Context, user uuid.UUID, tx *Transaction) {
	col, err := s.collection(user)
	if err != nil {
		slog.WarnContext(ctx, "local cache unavailable, transaction not mirrored", "id", tx.ID, "error", err)
		return
	}

	if err := col.Put(ctx, tx.ID.String(), tx); err != nil {
		slog.WarnContext(ctx, "failed to mirror transaction", "id", tx.ID, "error", err)
	}

	s.invalidateDerived(ctx, user)
}

// invalidateDerived drops cached aggregates computed from the transaction list.
func (s *Service) invalidateDerived(ctx context.Context, user uuid.UUID) {
	blobs, err := s.cache.Blobs(user)
	if err != nil {
		return
	}

	if err := blobs.Invalidate(ctx, DerivedKinds...); err != nil {
		slog.WarnContext(ctx, "failed to invalidate derived aggregates", "error", err)
	}
}

type dupKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOf(date time.Time, amount decimal.Decimal, typ Type, description string) dupKey {
	return dupKey{
		Date:        date.Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Type:        typ,
		Description: strings.ToLower(strings.TrimSpace(description)),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func paramsToTransaction(p CreateParams) *Transaction {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = p.Date
	}

	return &Transaction{
		Amount:      CanonicalAmount(p.Amount),
		Type:        p.Type,
		Date:        DateOnly(p.Date),
		Timestamp:   ts,
		CategoryID:  p.CategoryID,
		PayeeID:     p.PayeeID,
		Description: p.Description,
	}
}
