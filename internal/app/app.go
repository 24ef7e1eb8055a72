// Package app wires the remote store, the local cache and the domain
// services together for the binaries under cmd/.
package app

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/pocket/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/pocket/internal/budget/store"
	"github.com/MrJamesThe3rd/pocket/internal/config"
	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/goal"
	goalStore "github.com/MrJamesThe3rd/pocket/internal/goal/store"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/localcache"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/overview"
	overviewStore "github.com/MrJamesThe3rd/pocket/internal/overview/store"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
	referenceStore "github.com/MrJamesThe3rd/pocket/internal/reference/store"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
	txStore "github.com/MrJamesThe3rd/pocket/internal/transaction/store"
)

type App struct {
	Cache        *localcache.Store
	Mirror       *mirror.Coordinator
	Transactions *transaction.Service
	Reference    *reference.Service
	Budgets      *budget.Service
	Goals        *goal.Service
	Overview     *overview.Service
	Importer     *importer.Service

	remote *sql.DB
	local  *sql.DB
}

// New opens both databases and builds every service on top of them.
func New(cfg *config.Config) (*App, error) {
	remote, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to remote database: %w", err)
	}

	local, err := database.NewLocal(cfg.Cache.Path)
	if err != nil {
		remote.Close()
		return nil, fmt.Errorf("opening local cache: %w", err)
	}

	return build(cfg, remote, local), nil
}

func build(cfg *config.Config, remote, local *sql.DB) *App {
	var (
		cache  = localcache.New(local)
		txRepo = txStore.New(remote)
		sync   = mirror.New(txRepo, cache, mirror.Config{
			PageSize: cfg.Cache.PageSize,
			Interval: cfg.Cache.SyncInterval,
		})
		transactions = transaction.NewService(txRepo, cache, sync)
		refs         = reference.NewService(referenceStore.New(remote), cache, cfg.Cache.ReferenceTTL)
	)

	return &App{
		Cache:        cache,
		Mirror:       sync,
		Transactions: transactions,
		Reference:    refs,
		Budgets:      budget.NewService(budgetStore.New(remote), cache, sync, cfg.Cache.ListTTL),
		Goals:        goal.NewService(goalStore.New(remote), cache, cfg.Cache.ListTTL),
		Overview:     overview.NewService(overviewStore.New(remote), cache, sync, cfg.Cache.StatsTTL),
		Importer:     importer.NewService(transactions, refs),
		remote:       remote,
		local:        local,
	}
}

func (a *App) Close() error {
	return errors.Join(a.remote.Close(), a.local.Close())
}
