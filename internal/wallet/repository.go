package wallet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

const (
	defaultProvider = "lendsqr"
	defaultCurrency = "NGN"

	// createAttempts bounds the regenerate-and-retry loop when a generated
	// account number or savings id collides with an existing wallet.
	createAttempts = 5
)

// Repository persists wallet records. Balance mutation is the ledger's job;
// the repository only creates and looks up wallets.
type Repository interface {
	Create(ctx context.Context, ownerID int64, accountName string) (ledger.Wallet, error)
	GetByID(ctx context.Context, id int64) (ledger.Wallet, error)
	GetByOwner(ctx context.Context, ownerID int64) (ledger.Wallet, error)
	GetByAccountNumber(ctx context.Context, accountNo string) (ledger.Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db     *pgxpool.Pool
	gen    *Generator
	logger *slog.Logger
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool, gen *Generator, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, gen: gen, logger: logger}
}

// Create inserts a zero-balance wallet with freshly generated account and
// savings identifiers, regenerating on unique-constraint collisions up to
// createAttempts times.
func (r *PostgresRepository) Create(ctx context.Context, ownerID int64, accountName string) (ledger.Wallet, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		accountNo := r.gen.AccountNumber()
		savingsID := r.gen.SavingsID()

		row := r.db.QueryRow(ctx, `INSERT INTO wallets (user_id, account_name, account_no, savings_id, provider, balance, currency)
            VALUES ($1, $2, $3, $4, $5, 0, $6)
            RETURNING id, user_id, COALESCE(account_name, ''), account_no, savings_id, provider, balance, currency, created_at, updated_at`,
			ownerID, accountName, accountNo, savingsID, defaultProvider, defaultCurrency)

		w, err := scanWallet(row)
		if err == nil {
			return w, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "wallets_user_id_key" {
				return ledger.Wallet{}, ledger.ErrWalletExists
			}
			r.logger.Warn("generated identifier collided, retrying",
				slog.Int64("owner_id", ownerID),
				slog.Int("attempt", attempt+1),
				slog.String("constraint", pgErr.ConstraintName),
			)
			continue
		}
		return ledger.Wallet{}, err
	}
	return ledger.Wallet{}, ledger.ErrGenerationExhausted
}

// GetByID fetches a wallet by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (ledger.Wallet, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetByOwner fetches the owner's wallet.
func (r *PostgresRepository) GetByOwner(ctx context.Context, ownerID int64) (ledger.Wallet, error) {
	return r.get(ctx, `WHERE user_id = $1`, ownerID)
}

// GetByAccountNumber fetches a wallet by account number.
func (r *PostgresRepository) GetByAccountNumber(ctx context.Context, accountNo string) (ledger.Wallet, error) {
	return r.get(ctx, `WHERE account_no = $1`, accountNo)
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (ledger.Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, COALESCE(account_name, ''), account_no, savings_id, provider, balance, currency, created_at, updated_at
        FROM wallets `+where, arg)
	w, err := scanWallet(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.Wallet{}, ledger.ErrWalletNotFound
	}
	return w, err
}

func scanWallet(row pgx.Row) (ledger.Wallet, error) {
	var w ledger.Wallet
	err := row.Scan(&w.ID, &w.OwnerID, &w.AccountName, &w.AccountNumber, &w.SavingsID, &w.Provider, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}
