package wallets

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// creates an empty in-memory repository
func NewMemoryRepository(currency string) *MemoryRepository {
	return &MemoryRepository{
		currency: currency,
		wallets:  make(map[string]*Wallet),
		txs:      make(map[string][]Transaction),
	}
}

func (r *MemoryRepository) Get(_ context.Context, userID string) (*Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *r.wallet(userID)
	return &clone, nil
}

func (r *MemoryRepository) Apply(_ context.Context, params ApplyParams) (*Transaction, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.wallet(params.UserID)

	if params.Reference != "" {
		for _, t := range r.txs[params.UserID] {
			if t.Reference == params.Reference {
				return nil, ErrDuplicateReference
			}
		}
	}

	newBalance, err := nextBalance(w.Balance, params)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := Transaction{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		Kind:         params.Kind,
		Amount:       params.Amount,
		BalanceAfter: newBalance,
		Currency:     w.Currency,
		Reference:    params.Reference,
		CreatedAt:    now,
	}

	w.Balance = newBalance
	w.UpdatedAt = now
	r.txs[params.UserID] = append(r.txs[params.UserID], t)

	return &t, nil
}

func (r *MemoryRepository) ListTransactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.txs[userID]
	out := make([]Transaction, 0, min(limit, len(all)))

	// stored oldest first
	for _, t := range slices.Backward(all) {
		if len(out) == limit {
			break
		}

		out = append(out, t)
	}

	return out, nil
}

func (r *MemoryRepository) GetTransaction(_ context.Context, userID, transactionID string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.txs[userID] {
		if t.ID == transactionID {
			return &t, nil
		}
	}

	return nil, ErrNotFound
}

// caller holds mu
func (r *MemoryRepository) wallet(userID string) *Wallet {
	w, ok := r.wallets[userID]
	if !ok {
		now := time.Now().UTC()
		w = &Wallet{UserID: userID, Currency: r.currency, CreatedAt: now, UpdatedAt: now}
		r.wallets[userID] = w
	}

	return w
}
