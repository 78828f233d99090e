package wallet

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"codeberg.org/gamevault/server/api/rest/pagination"
	"codeberg.org/gamevault/server/gamevault/wallets"
	"codeberg.org/gamevault/server/internal/auth"
	"codeberg.org/gamevault/server/internal/correlation"
	"codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/logger"
	"codeberg.org/gamevault/server/internal/notifications"
	"github.com/gin-gonic/gin"
)

// GetWalletHandler godoc
// @Summary Get wallet
// @Description Returns the caller's balance, creating an empty wallet on first access
// @Tags wallet
// @Produce json
// @Success 200 {object} WalletResponse
// @Failure 401 {object} errors.Response
// @Router /api/v1/wallet [get]
// @Security BearerAuth
func GetWalletHandler(walletRepo wallets.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		w, err := walletRepo.Get(c.Request.Context(), userID)
		if err != nil {
			errors.Abort(c, fmt.Errorf("get wallet: %w", err))
			return
		}

		c.JSON(http.StatusOK, WalletResponse{Wallet: w})
	}
}

// ListTransactionsHandler godoc
// @Summary List transactions
// @Description Lists the caller's transactions, newest first
// @Tags wallet
// @Produce json
// @Param limit query int false "Page size (1-100, default 50)"
// @Success 200 {object} TransactionsListResponse
// @Failure 401 {object} errors.Response
// @Failure 422 {object} errors.Response
// @Router /api/v1/wallet/transactions [get]
// @Security BearerAuth
func ListTransactionsHandler(walletRepo wallets.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		var query pagination.Query
		if !errors.BindQuery(c, &query) {
			return
		}

		limit := query.EffectiveLimit()

		txs, err := walletRepo.ListTransactions(c.Request.Context(), userID, pagination.FetchLimit(limit))
		if err != nil {
			errors.Abort(c, fmt.Errorf("list transactions: %w", err))
			return
		}

		txs, meta := pagination.Trim(txs, limit)
		if txs == nil {
			txs = []wallets.Transaction{}
		}

		c.JSON(http.StatusOK, TransactionsListResponse{
			Transactions: txs,
			Pagination:   meta,
		})
	}
}

// GetTransactionHandler godoc
// @Summary Get transaction
// @Tags wallet
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} errors.Response "E3002 transaction not found"
// @Router /api/v1/wallet/transactions/{id} [get]
// @Security BearerAuth
func GetTransactionHandler(walletRepo wallets.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		txID, ok := errors.ValidatePathUUID(c, "id", transactionNotFound())
		if !ok {
			return
		}

		tx, err := walletRepo.GetTransaction(c.Request.Context(), userID, txID)
		if stderrors.Is(err, wallets.ErrNotFound) {
			errors.Abort(c, transactionNotFound())
			return
		}

		if err != nil {
			errors.Abort(c, fmt.Errorf("get transaction: %w", err))
			return
		}

		c.JSON(http.StatusOK, TransactionResponse{Transaction: tx})
	}
}

// DepositHandler godoc
// @Summary Deposit funds
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Amount in minor units"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} errors.Response "E3006 amount above limit"
// @Failure 409 {object} errors.Response "E3007 duplicate reference"
// @Failure 422 {object} errors.Response
// @Router /api/v1/wallet/deposits [post]
// @Security BearerAuth
func DepositHandler(walletRepo wallets.Store) gin.HandlerFunc {
	return movementHandler(walletRepo, wallets.KindDeposit, nil)
}

// WithdrawHandler godoc
// @Summary Withdraw funds
// @Description Withdrawals at or above the alert threshold notify the admins
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body MovementRequest true "Amount in minor units"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} errors.Response "E3001 insufficient balance"
// @Failure 409 {object} errors.Response "E3007 duplicate reference"
// @Failure 422 {object} errors.Response
// @Router /api/v1/wallet/withdrawals [post]
// @Security BearerAuth
func WithdrawHandler(walletRepo wallets.Store, notifier *notifications.Service, alertThreshold int64) gin.HandlerFunc {
	return movementHandler(walletRepo, wallets.KindWithdrawal, func(c *gin.Context, tx *wallets.Transaction) {
		if alertThreshold <= 0 || tx.Amount < alertThreshold {
			return
		}

		notifier.NotifyAdminsAsync(notifications.Notification{
			Title: "Large withdrawal",
			Level: notifications.LevelWarning,
			Fields: map[string]string{
				"user_id":        tx.UserID,
				"amount":         strconv.FormatInt(tx.Amount, 10),
				"currency":       tx.Currency,
				"transaction_id": tx.ID,
				"request":        correlation.Short(correlation.FromGin(c)),
			},
		})
	})
}

func movementHandler(walletRepo wallets.Store, kind wallets.Kind, after func(*gin.Context, *wallets.Transaction)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Abort(c, errors.Unauthenticated())
			return
		}

		var req MovementRequest
		if !errors.BindJSON(c, &req) {
			return
		}

		if req.Amount > MaxAmount {
			errors.Abort(c, errors.NewSafe(errors.CodeAmountLimitExceeded,
				errors.WithStatus(http.StatusBadRequest),
				errors.WithDetail("max_amount", MaxAmount),
			))
			return
		}

		tx, err := walletRepo.Apply(c.Request.Context(), wallets.ApplyParams{
			UserID:    userID,
			Kind:      kind,
			Amount:    req.Amount,
			Reference: req.Reference,
		})
		if err != nil {
			errors.Abort(c, applyError(kind, err))
			return
		}

		logger.FromContext(c.Request.Context()).Infow("wallet transaction applied",
			"transaction_id", tx.ID,
			"kind", tx.Kind,
			"amount", tx.Amount,
		)

		if after != nil {
			after(c, tx)
		}

		c.JSON(http.StatusCreated, TransactionResponse{Transaction: tx})
	}
}

// maps repository sentinels onto catalog codes; anything else stays unexpected
func applyError(kind wallets.Kind, err error) error {
	switch {
	case stderrors.Is(err, wallets.ErrInsufficientFunds):
		return errors.NewSafe(errors.CodeInsufficientBalance, errors.WithStatus(http.StatusBadRequest))
	case stderrors.Is(err, wallets.ErrDuplicateReference):
		return errors.NewSafe(errors.CodeDuplicateTransaction, errors.WithStatus(http.StatusConflict))
	case stderrors.Is(err, wallets.ErrInvalidAmount):
		return errors.NewSafe(errors.CodeInvalidAmount, errors.WithStatus(http.StatusBadRequest))
	}

	return fmt.Errorf("apply %s: %w", kind, err)
}

func transactionNotFound() error {
	return errors.NewSafe(errors.CodeTransactionNotFound, errors.WithStatus(http.StatusNotFound))
}
