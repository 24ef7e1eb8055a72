// Package cachekey derives the per-user storage namespaces used by the local cache.
package cachekey

import (
	"strings"

	"github.com/google/uuid"
)

// Kind names a family of cached entities.
type Kind string

const (
	KindTransactions    Kind = "transactions"
	KindCategories      Kind = "categories"
	KindPayees          Kind = "payees"
	KindBudgets         Kind = "budgets"
	KindBudgetAmountMap Kind = "budget_amount_map"
	KindGoals           Kind = "goals"
	KindOverviewStats   Kind = "overview_stats"
	KindSettings        Kind = "settings"
	KindSyncState       Kind = "sync_state"
)

const (
	userPrefix  = "user:"
	guardPrefix = "!nouser:"
)

// Key returns the storage namespace for kind scoped to user.
// A nil user yields a guard key that no store accepts.
func Key(user uuid.UUID, kind Kind) string {
	if user == uuid.Nil {
		return guardPrefix + string(kind)
	}

	return userPrefix + user.String() + ":" + string(kind)
}

// IsGuard reports whether key was derived without a signed-in user.
func IsGuard(key string) bool {
	return !strings.HasPrefix(key, userPrefix)
}
