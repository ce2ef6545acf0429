package wallet

import (
	"context"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

// Service exposes wallet provisioning and lookup backed by the repository
// and the ledger.
type Service struct {
	repo   Repository
	ledger ledger.Ledger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, ledger ledger.Ledger) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Create provisions a zero-balance wallet for the owner. Wallets are created
// exactly once, at onboarding.
func (s *Service) Create(ctx context.Context, ownerID int64, accountName string) (ledger.Wallet, error) {
	return s.repo.Create(ctx, ownerID, accountName)
}

// GetByOwner retrieves the owner's wallet.
func (s *Service) GetByOwner(ctx context.Context, ownerID int64) (ledger.Wallet, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

// GetByAccountNumber retrieves a wallet by account number.
func (s *Service) GetByAccountNumber(ctx context.Context, accountNo string) (ledger.Wallet, error) {
	return s.repo.GetByAccountNumber(ctx, accountNo)
}

// Balance returns the owner's wallet with its current balance as a snapshot
// read through the ledger.
func (s *Service) Balance(ctx context.Context, ownerID int64) (ledger.Wallet, error) {
	return s.ledger.Balance(ctx, ownerID)
}
