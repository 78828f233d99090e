package wallets

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/gamevault/server/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres unique_violation
const uniqueViolation = "23505"

// creates a new wallet repository; new wallets use currency
func NewRepository(db *pgxpool.Pool, currency string) *Repository {
	return &Repository{db: db, currency: currency}
}

// returns the user's wallet, creating an empty one on first access
func (r *Repository) Get(ctx context.Context, userID string) (*Wallet, error) {
	if _, err := r.db.Exec(ctx, queryEnsureWallet, userID, r.currency); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	var w Wallet

	err := r.db.QueryRow(ctx, queryGetWallet, userID).Scan(
		&w.UserID,
		&w.Balance,
		&w.Currency,
		&w.CreatedAt,
		&w.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &w, nil
}

// changes the balance and records the transaction atomically
func (r *Repository) Apply(ctx context.Context, params ApplyParams) (*Transaction, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// defer rollback - will be no-op if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Warn("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, queryEnsureWallet, params.UserID, r.currency); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	var balance int64
	var currency string

	if err := tx.QueryRow(ctx, queryLockBalance, params.UserID).Scan(&balance, &currency); err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	if params.Reference != "" {
		var exists bool
		if err := tx.QueryRow(ctx, queryReferenceExists, params.UserID, params.Reference).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check reference: %w", err)
		}

		if exists {
			return nil, ErrDuplicateReference
		}
	}

	newBalance, err := nextBalance(balance, params)
	if err != nil {
		return nil, err
	}

	t, err := scanTransaction(tx.QueryRow(ctx, queryInsertTransaction,
		params.UserID,
		params.Kind,
		params.Amount,
		newBalance,
		currency,
		params.Reference,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateReference
		}

		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, queryUpdateBalance, newBalance, params.UserID); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return t, nil
}

// returns the most recent transactions first
func (r *Repository) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := r.db.Query(ctx, queryListTransactions, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	defer rows.Close()
	transactions := []Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		transactions = append(transactions, *t)
	}

	return transactions, rows.Err()
}

// returns one of the user's transactions
func (r *Repository) GetTransaction(ctx context.Context, userID, transactionID string) (*Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, queryGetTransaction, userID, transactionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Kind,
		&t.Amount,
		&t.BalanceAfter,
		&t.Currency,
		&t.Reference,
		&t.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &t, nil
}

func validate(params ApplyParams) error {
	if !params.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, params.Kind)
	}

	if params.Amount <= 0 {
		return ErrInvalidAmount
	}

	return nil
}

// balance after applying params; debits never go below zero
func nextBalance(balance int64, params ApplyParams) (int64, error) {
	if params.Kind.Debit() {
		if balance < params.Amount {
			return 0, ErrInsufficientFunds
		}

		return balance - params.Amount, nil
	}

	return balance + params.Amount, nil
}
