package wallet

import (
	"codeberg.org/gamevault/server/api/rest/pagination"
	"codeberg.org/gamevault/server/gamevault/wallets"
)

// largest single deposit or withdrawal, in minor units
const MaxAmount int64 = 10_000_000

// MovementRequest is the body of a deposit or withdrawal
type MovementRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Reference string `json:"reference" binding:"max=64"`
}

// WalletResponse wraps wallet data
type WalletResponse struct {
	Wallet *wallets.Wallet `json:"wallet"`
}

// TransactionResponse wraps a single transaction
type TransactionResponse struct {
	Transaction *wallets.Transaction `json:"transaction"`
}

// TransactionsListResponse is a page of transactions, newest first
type TransactionsListResponse struct {
	Transactions []wallets.Transaction `json:"transactions"`
	Pagination   pagination.Meta       `json:"pagination"`
}
