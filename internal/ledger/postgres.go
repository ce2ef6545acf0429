package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	defaultOperationTimeout = 5 * time.Second
	defaultMaxPageSize      = 100

	fundDescription     = "Wallet funding via external source"
	withdrawDescription = "Withdrawal"
)

// Options tunes ledger backend behaviour. Zero values fall back to defaults.
type Options struct {
	// OperationTimeout bounds each mutating operation so a row lock is
	// never held indefinitely.
	OperationTimeout time.Duration
	// MaxPageSize caps transaction history page sizes.
	MaxPageSize int
}

// PostgresLedger persists wallets and transactions in PostgreSQL. Balance
// reads and writes for a wallet serialize through SELECT ... FOR UPDATE on
// its row; reference idempotency is backed by the unique constraint on
// transactions.reference.
type PostgresLedger struct {
	db          *pgxpool.Pool
	logger      *slog.Logger
	opTimeout   time.Duration
	maxPageSize int
}

// NewPostgres constructs a Postgres-backed ledger implementation.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger, opts Options) *PostgresLedger {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = defaultOperationTimeout
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = defaultMaxPageSize
	}
	return &PostgresLedger{
		db:          db,
		logger:      logger,
		opTimeout:   opts.OperationTimeout,
		maxPageSize: opts.MaxPageSize,
	}
}

// Fund credits the owner's wallet inside one transaction. The reference acts
// as the idempotency key: a prior row with the same reference aborts with
// ErrDuplicateReference, and so does losing the insert race on the unique
// constraint.
func (l *PostgresLedger) Fund(ctx context.Context, ownerID int64, amount decimal.Decimal, reference string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var existingID int64
	err = tx.QueryRow(ctx, `SELECT id FROM transactions WHERE reference = $1`, reference).Scan(&existingID)
	if err == nil {
		return Transaction{}, ErrDuplicateReference
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, err
	}

	walletID, balance, err := lockWalletByOwner(ctx, tx, ownerID)
	if err != nil {
		return Transaction{}, err
	}

	newBalance := balance.Add(amount)
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, newBalance, walletID); err != nil {
		return Transaction{}, err
	}

	txn, err := insertTransaction(ctx, tx, Transaction{
		WalletID:    walletID,
		Type:        TypeCredit,
		Amount:      amount,
		Reference:   reference,
		Description: fundDescription,
		Status:      StatusCompleted,
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race against a concurrent fund with the same reference.
			return Transaction{}, ErrDuplicateReference
		}
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	l.logger.Info("wallet funded",
		slog.Int64("wallet_id", walletID),
		slog.String("reference", reference),
		slog.String("amount", amount.String()),
	)
	return txn, nil
}

// Transfer moves funds between two wallets atomically: both balances change
// and two transaction rows are inserted, or nothing happens. Wallet row
// locks are always taken in ascending wallet id order so concurrent
// opposite-direction transfers cannot deadlock.
func (l *PostgresLedger) Transfer(ctx context.Context, senderOwnerID int64, recipientAccountNo string, amount decimal.Decimal, description string) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Resolve both wallet ids before taking any lock.
	var senderID int64
	err = tx.QueryRow(ctx, `SELECT id FROM wallets WHERE user_id = $1`, senderOwnerID).Scan(&senderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrWalletNotFound
	}
	if err != nil {
		return Transaction{}, err
	}

	var recipientID int64
	var recipientName string
	err = tx.QueryRow(ctx, `SELECT id, COALESCE(account_name, '') FROM wallets WHERE account_no = $1`, recipientAccountNo).Scan(&recipientID, &recipientName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrWalletNotFound
	}
	if err != nil {
		return Transaction{}, err
	}

	if senderID == recipientID {
		return Transaction{}, ErrSelfTransfer
	}

	// Canonical lock order: ascending wallet id, regardless of which side
	// is the sender. Concurrent A->B and B->A transfers then queue on the
	// same first lock instead of deadlocking.
	first, second := senderID, recipientID
	if recipientID < senderID {
		first, second = recipientID, senderID
	}
	balances := make(map[int64]decimal.Decimal, 2)
	for _, id := range []int64{first, second} {
		b, err := lockWalletByID(ctx, tx, id)
		if err != nil {
			return Transaction{}, err
		}
		balances[id] = b
	}

	if balances[senderID].LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, balances[senderID].Sub(amount), senderID); err != nil {
		return Transaction{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, balances[recipientID].Add(amount), recipientID); err != nil {
		return Transaction{}, err
	}

	reference := transferReference(senderID, time.Now())
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", recipientName)
	}

	senderTxn, err := insertTransaction(ctx, tx, Transaction{
		WalletID:          senderID,
		Type:              TypeTransfer,
		Amount:            amount,
		Reference:         reference,
		Description:       description,
		RecipientWalletID: recipientID,
		Status:            StatusCompleted,
		Metadata:          map[string]string{"recipient": recipientName},
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Transaction{}, ErrDuplicateReference
		}
		return Transaction{}, err
	}

	if _, err := insertTransaction(ctx, tx, Transaction{
		WalletID:    recipientID,
		Type:        TypeCredit,
		Amount:      amount,
		Reference:   creditLegReference(reference),
		Description: fmt.Sprintf("Transfer from wallet %d", senderID),
		Status:      StatusCompleted,
	}); err != nil {
		if isUniqueViolation(err) {
			return Transaction{}, ErrDuplicateReference
		}
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	l.logger.Info("transfer completed",
		slog.Int64("sender_wallet_id", senderID),
		slog.Int64("recipient_wallet_id", recipientID),
		slog.String("reference", reference),
		slog.String("amount", amount.String()),
	)
	return senderTxn, nil
}

// Withdraw debits the owner's wallet and records the payout destination in
// the transaction metadata. Executing the payout is a downstream concern;
// the ledger only records settled intent.
func (l *PostgresLedger) Withdraw(ctx context.Context, ownerID int64, amount decimal.Decimal, destination BankAccount) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	walletID, balance, err := lockWalletByOwner(ctx, tx, ownerID)
	if err != nil {
		return Transaction{}, err
	}

	if balance.LessThan(amount) {
		return Transaction{}, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, balance.Sub(amount), walletID); err != nil {
		return Transaction{}, err
	}

	txn, err := insertTransaction(ctx, tx, Transaction{
		WalletID:    walletID,
		Type:        TypeDebit,
		Amount:      amount,
		Reference:   withdrawalReference(walletID, time.Now()),
		Description: withdrawDescription,
		Status:      StatusCompleted,
		Metadata: map[string]string{
			"bank_account": destination.Number,
			"bank_code":    destination.Code,
		},
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Transaction{}, ErrDuplicateReference
		}
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	l.logger.Info("withdrawal recorded",
		slog.Int64("wallet_id", walletID),
		slog.String("reference", txn.Reference),
		slog.String("amount", amount.String()),
	)
	return txn, nil
}

// Balance returns the owner's wallet as a snapshot read without locking.
func (l *PostgresLedger) Balance(ctx context.Context, ownerID int64) (Wallet, error) {
	row := l.db.QueryRow(ctx, `SELECT id, user_id, COALESCE(account_name, ''), account_no, savings_id, provider, balance, currency, created_at, updated_at
        FROM wallets WHERE user_id = $1`, ownerID)
	var w Wallet
	if err := row.Scan(&w.ID, &w.OwnerID, &w.AccountName, &w.AccountNumber, &w.SavingsID, &w.Provider, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	return w, nil
}

// ListTransactions returns a page of the owner's transactions newest first
// plus the total row count for pagination metadata.
func (l *PostgresLedger) ListTransactions(ctx context.Context, ownerID int64, page, pageSize int) ([]Transaction, int64, error) {
	if page < 1 || pageSize < 1 {
		return nil, 0, fmt.Errorf("page and page size must be positive")
	}
	if pageSize > l.maxPageSize {
		pageSize = l.maxPageSize
	}

	wallet, err := l.Balance(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := l.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`, wallet.ID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := l.db.Query(ctx, `SELECT id, wallet_id, type, amount, reference, COALESCE(description, ''), COALESCE(recipient_wallet_id, 0), status, metadata, created_at
        FROM transactions WHERE wallet_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`, wallet.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		var metadata []byte
		if err := rows.Scan(&txn.ID, &txn.WalletID, &txn.Type, &txn.Amount, &txn.Reference, &txn.Description, &txn.RecipientWalletID, &txn.Status, &metadata, &txn.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &txn.Metadata); err != nil {
				return nil, 0, err
			}
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

func lockWalletByOwner(ctx context.Context, tx pgx.Tx, ownerID int64) (int64, decimal.Decimal, error) {
	var id int64
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT id, balance FROM wallets WHERE user_id = $1 FOR UPDATE`, ownerID).Scan(&id, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, decimal.Zero, ErrWalletNotFound
	}
	if err != nil {
		return 0, decimal.Zero, err
	}
	return id, balance, nil
}

func lockWalletByID(ctx context.Context, tx pgx.Tx, id int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1 FOR UPDATE`, id).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrWalletNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn Transaction) (Transaction, error) {
	var metadata []byte
	if txn.Metadata != nil {
		var err error
		metadata, err = json.Marshal(txn.Metadata)
		if err != nil {
			return Transaction{}, err
		}
	}

	var recipient any
	if txn.RecipientWalletID != 0 {
		recipient = txn.RecipientWalletID
	}

	err := tx.QueryRow(ctx, `INSERT INTO transactions (wallet_id, type, amount, reference, description, recipient_wallet_id, status, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`,
		txn.WalletID, txn.Type, txn.Amount, txn.Reference, txn.Description, recipient, txn.Status, metadata,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
