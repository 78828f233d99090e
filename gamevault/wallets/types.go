package wallets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("transaction not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDuplicateReference = errors.New("duplicate transaction reference")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidKind        = errors.New("unknown transaction kind")
)

// what a transaction does to the balance
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindBet        Kind = "bet"
	KindWin        Kind = "win"
)

// reports whether the kind lowers the balance
func (k Kind) Debit() bool {
	return k == KindWithdrawal || k == KindBet
}

// reports whether the kind is known
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindBet, KindWin:
		return true
	}

	return false
}

// a player's balance, in minor units of Currency
type Wallet struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// one recorded balance change
type Transaction struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Kind         Kind      `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Currency     string    `json:"currency"`
	Reference    string    `json:"reference,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// contains data for a balance change
type ApplyParams struct {
	UserID string
	Kind   Kind
	Amount int64

	// optional client idempotency key, unique per user
	Reference string
}

// wallet persistence
type Store interface {
	Get(ctx context.Context, userID string) (*Wallet, error)
	Apply(ctx context.Context, params ApplyParams) (*Transaction, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*Transaction, error)
}

// handles wallet database operations
type Repository struct {
	db       *pgxpool.Pool
	currency string
}

// keeps wallets in process memory (development and tests)
type MemoryRepository struct {
	mu       sync.Mutex
	currency string
	wallets  map[string]*Wallet
	txs      map[string][]Transaction
}
