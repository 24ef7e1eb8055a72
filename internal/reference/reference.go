package reference

import (
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type Category struct {
	ID   uuid.UUID        `json:"id"`
	Name string           `json:"name"`
	Type transaction.Type `json:"type"`
	Icon string           `json:"icon"`
}

type Payee struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Logo *string   `json:"logo"`
}

// MatchPayee returns the payee whose name appears in description, ignoring
// case. The longest matching name wins so "Shell Recharge" beats "Shell".
func MatchPayee(payees []Payee, description string) (Payee, bool) {
	desc := strings.ToLower(description)

	var (
		best  Payee
		found bool
	)

	for _, p := range payees {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" || !strings.Contains(desc, name) {
			continue
		}

		if !found || len(name) > len(strings.TrimSpace(best.Name)) {
			best, found = p, true
		}
	}

	return best, found
}

// FindCategory looks a category up by id.
func FindCategory(categories []Category, id uuid.UUID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}

	return Category{}, false
}
