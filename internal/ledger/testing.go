package ledger

import "github.com/shopspring/decimal"

// SeedBalance is a test helper that sets a wallet balance directly when using
// the in-memory ledger.
func SeedBalance(l Ledger, ownerID int64, amount decimal.Decimal) {
	if mem, ok := l.(*InMemory); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if id, exists := mem.byOwner[ownerID]; exists {
			mem.wallets[id].Balance = amount
		}
	}
}
