package wallet

import (
	"context"
	"errors"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

type memoryRepository struct {
	store *ledger.InMemory
	gen   *Generator
}

// NewMemoryRepository constructs a repository for tests, sharing wallet state
// with the given in-memory ledger.
func NewMemoryRepository(store *ledger.InMemory, gen *Generator) Repository {
	return &memoryRepository{store: store, gen: gen}
}

func (r *memoryRepository) Create(ctx context.Context, ownerID int64, accountName string) (ledger.Wallet, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		w, err := r.store.CreateWallet(ctx, ledger.Wallet{
			OwnerID:       ownerID,
			AccountName:   accountName,
			AccountNumber: r.gen.AccountNumber(),
			SavingsID:     r.gen.SavingsID(),
			Provider:      defaultProvider,
			Currency:      defaultCurrency,
		})
		if errors.Is(err, ledger.ErrAccountNumberTaken) {
			continue
		}
		if err != nil {
			return ledger.Wallet{}, err
		}
		return w, nil
	}
	return ledger.Wallet{}, ledger.ErrGenerationExhausted
}

func (r *memoryRepository) GetByID(ctx context.Context, id int64) (ledger.Wallet, error) {
	return r.store.WalletByID(ctx, id)
}

func (r *memoryRepository) GetByOwner(ctx context.Context, ownerID int64) (ledger.Wallet, error) {
	return r.store.WalletByOwner(ctx, ownerID)
}

func (r *memoryRepository) GetByAccountNumber(ctx context.Context, accountNo string) (ledger.Wallet, error) {
	return r.store.WalletByAccountNumber(ctx, accountNo)
}
