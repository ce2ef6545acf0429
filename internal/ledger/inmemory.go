package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// InMemory is a concurrency-safe in-memory ledger useful for unit tests. It
// mirrors the Postgres backend's semantics, including reference idempotency
// and the wallet uniqueness constraints.
type InMemory struct {
	mu           sync.Mutex
	wallets      map[int64]*Wallet
	byOwner      map[int64]int64
	byAccountNo  map[string]int64
	bySavingsID  map[string]int64
	byReference  map[string]int64
	transactions []Transaction
	nextWalletID int64
	nextTxnID    int64
	maxPageSize  int
	now          func() time.Time
}

// NewInMemory creates an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		wallets:     make(map[int64]*Wallet),
		byOwner:     make(map[int64]int64),
		byAccountNo: make(map[string]int64),
		bySavingsID: make(map[string]int64),
		byReference: make(map[string]int64),
		maxPageSize: defaultMaxPageSize,
		now:         time.Now,
	}
}

// CreateWallet inserts a wallet record, enforcing the same uniqueness rules
// as the store schema.
func (l *InMemory) CreateWallet(_ context.Context, w Wallet) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byOwner[w.OwnerID]; exists {
		return Wallet{}, ErrWalletExists
	}
	if _, exists := l.byAccountNo[w.AccountNumber]; exists {
		return Wallet{}, ErrAccountNumberTaken
	}
	if _, exists := l.bySavingsID[w.SavingsID]; exists {
		return Wallet{}, ErrAccountNumberTaken
	}

	l.nextWalletID++
	w.ID = l.nextWalletID
	w.Balance = decimal.Zero
	now := l.now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now

	stored := w
	l.wallets[w.ID] = &stored
	l.byOwner[w.OwnerID] = w.ID
	l.byAccountNo[w.AccountNumber] = w.ID
	l.bySavingsID[w.SavingsID] = w.ID
	return w, nil
}

// WalletByID fetches a wallet by primary key.
func (l *InMemory) WalletByID(_ context.Context, id int64) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.wallets[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return *w, nil
}

// WalletByOwner fetches the owner's wallet.
func (l *InMemory) WalletByOwner(_ context.Context, ownerID int64) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.walletByOwnerLocked(ownerID)
}

// WalletByAccountNumber fetches a wallet by its account number.
func (l *InMemory) WalletByAccountNumber(_ context.Context, accountNo string) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.byAccountNo[accountNo]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return *l.wallets[id], nil
}

// Fund credits the owner's wallet, treating the reference as idempotency key.
func (l *InMemory) Fund(_ context.Context, ownerID int64, amount decimal.Decimal, reference string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.referenceTakenLocked(reference) {
		return Transaction{}, ErrDuplicateReference
	}

	id, ok := l.byOwner[ownerID]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	w := l.wallets[id]
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = l.now().UTC()

	return l.appendLocked(Transaction{
		WalletID:    id,
		Type:        TypeCredit,
		Amount:      amount,
		Reference:   reference,
		Description: fundDescription,
		Status:      StatusCompleted,
	}), nil
}

// Transfer moves funds between wallets and records both legs, or neither.
func (l *InMemory) Transfer(_ context.Context, senderOwnerID int64, recipientAccountNo string, amount decimal.Decimal, description string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	senderID, ok := l.byOwner[senderOwnerID]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	recipientID, ok := l.byAccountNo[recipientAccountNo]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	if senderID == recipientID {
		return Transaction{}, ErrSelfTransfer
	}

	sender := l.wallets[senderID]
	recipient := l.wallets[recipientID]
	if sender.Balance.LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	// Same uniqueness rule the transactions.reference constraint enforces:
	// a colliding generated reference aborts before any balance changes.
	now := l.now().UTC()
	reference := transferReference(senderID, now)
	if l.referenceTakenLocked(reference) || l.referenceTakenLocked(creditLegReference(reference)) {
		return Transaction{}, ErrDuplicateReference
	}

	sender.Balance = sender.Balance.Sub(amount)
	sender.UpdatedAt = now
	recipient.Balance = recipient.Balance.Add(amount)
	recipient.UpdatedAt = now

	if description == "" {
		description = fmt.Sprintf("Transfer to %s", recipient.AccountName)
	}

	senderTxn := l.appendLocked(Transaction{
		WalletID:          senderID,
		Type:              TypeTransfer,
		Amount:            amount,
		Reference:         reference,
		Description:       description,
		RecipientWalletID: recipientID,
		Status:            StatusCompleted,
		Metadata:          map[string]string{"recipient": recipient.AccountName},
	})
	l.appendLocked(Transaction{
		WalletID:    recipientID,
		Type:        TypeCredit,
		Amount:      amount,
		Reference:   creditLegReference(reference),
		Description: fmt.Sprintf("Transfer from wallet %d", senderID),
		Status:      StatusCompleted,
	})
	return senderTxn, nil
}

// Withdraw debits the owner's wallet and records the payout destination.
func (l *InMemory) Withdraw(_ context.Context, ownerID int64, amount decimal.Decimal, destination BankAccount) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id, ok := l.byOwner[ownerID]
	if !ok {
		return Transaction{}, ErrWalletNotFound
	}
	w := l.wallets[id]
	if w.Balance.LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	now := l.now().UTC()
	reference := withdrawalReference(id, now)
	if l.referenceTakenLocked(reference) {
		return Transaction{}, ErrDuplicateReference
	}

	w.Balance = w.Balance.Sub(amount)
	w.UpdatedAt = now

	return l.appendLocked(Transaction{
		WalletID:    id,
		Type:        TypeDebit,
		Amount:      amount,
		Reference:   reference,
		Description: withdrawDescription,
		Status:      StatusCompleted,
		Metadata: map[string]string{
			"bank_account": destination.Number,
			"bank_code":    destination.Code,
		},
	}), nil
}

// Balance returns the owner's wallet snapshot.
func (l *InMemory) Balance(_ context.Context, ownerID int64) (Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.walletByOwnerLocked(ownerID)
}

// ListTransactions pages over the owner's transactions newest first.
func (l *InMemory) ListTransactions(_ context.Context, ownerID int64, page, pageSize int) ([]Transaction, int64, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("page and page size must be positive")
	}
	if pageSize > l.maxPageSize {
		pageSize = l.maxPageSize
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, err := l.walletByOwnerLocked(ownerID)
	if err != nil {
		return nil, 0, err
	}

	var all []Transaction
	for _, txn := range l.transactions {
		if txn.WalletID == w.ID {
			all = append(all, txn)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (l *InMemory) walletByOwnerLocked(ownerID int64) (Wallet, error) {
	id, ok := l.byOwner[ownerID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return *l.wallets[id], nil
}

func (l *InMemory) referenceTakenLocked(reference string) bool {
	_, exists := l.byReference[reference]
	return exists
}

func (l *InMemory) appendLocked(txn Transaction) Transaction {
	l.nextTxnID++
	txn.ID = l.nextTxnID
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = l.now().UTC()
	}
	l.byReference[txn.Reference] = txn.ID
	l.transactions = append(l.transactions, txn)
	return txn
}
