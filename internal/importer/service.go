package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer

// Batcher writes parsed rows as transactions.
type Batcher interface {
	ImportBatch(ctx context.Context, user uuid.UUID, params []transaction.CreateParams) (*transaction.ImportResult, error)
	CreateBatch(ctx context.Context, user uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

type PayeeSource interface {
	Payees(ctx context.Context, user uuid.UUID) ([]reference.Payee, error)
}

// Options picks the category each imported row lands in. Statements carry
// no category, so the caller chooses one per direction.
type Options struct {
	ExpenseCategoryID uuid.UUID
	IncomeCategoryID  uuid.UUID
}

func (o Options) categoryFor(t transaction.Type) uuid.UUID {
	if t == transaction.TypeIncome {
		return o.IncomeCategoryID
	}

	return o.ExpenseCategoryID
}

type Service struct {
	txs    Batcher
	payees PayeeSource
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(txs Batcher, payees PayeeSource, opts ...Option) *Service {
	s := &Service{txs: txs, payees: payees, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type Prepared struct {
	Format  string                     `json:"format"`
	Charset string                     `json:"charset"`
	Params  []transaction.CreateParams `json:"-"`
	Matched int                        `json:"matched_payees"`
}

// Prepare parses a statement and turns its rows into create params with
// payees matched against the user's cached payee list.
func (s *Service) Prepare(ctx context.Context, user uuid.UUID, r io.Reader, opts Options) (*Prepared, error) {
	stmt, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	payees, err := s.payees.Payees(ctx, user)
	if err != nil {
		slog.WarnContext(ctx, "payees unavailable, importing without payee matching", "error", err)
	}

	out := &Prepared{Format: stmt.Format, Charset: stmt.Charset}
	ts := s.now()

	for _, row := range stmt.Rows {
		p := transaction.CreateParams{
			Amount:      row.Amount,
			Type:        row.Type,
			Date:        row.Date,
			Timestamp:   ts,
			CategoryID:  opts.categoryFor(row.Type),
			Description: new(row.Description),
		}

		if payee, ok := reference.MatchPayee(payees, row.Description); ok {
			p.PayeeID = new(payee.ID)
			out.Matched++
		}

		out.Params = append(out.Params, p)
	}

	slog.InfoContext(ctx, "statement parsed",
		"format", stmt.Format,
		"charset", stmt.Charset,
		"rows", len(out.Params),
		"matched_payees", out.Matched,
	)

	return out, nil
}

// Import parses and writes a statement. When rows look like transactions
// the user already has, nothing is written and the conflicts come back.
func (s *Service) Import(ctx context.Context, user uuid.UUID, r io.Reader, opts Options) (*transaction.ImportResult, error) {
	prepared, err := s.Prepare(ctx, user, r, opts)
	if err != nil {
		return nil, err
	}

	return s.txs.ImportBatch(ctx, user, prepared.Params)
}

// Confirm writes params the user reviewed after a conflicting import.
func (s *Service) Confirm(ctx context.Context, user uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
	return s.txs.CreateBatch(ctx, user, params)
}
