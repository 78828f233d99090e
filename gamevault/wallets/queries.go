package wallets

const (
	queryEnsureWallet = `
		INSERT INTO wallets (user_id, currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	queryGetWallet = `
		SELECT user_id, balance, currency, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	queryLockBalance = `
		SELECT balance, currency
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`

	queryReferenceExists = `
		SELECT EXISTS (
			SELECT 1 FROM wallet_transactions WHERE user_id = $1 AND reference = $2
		)
	`

	queryInsertTransaction = `
		INSERT INTO wallet_transactions (user_id, kind, amount, balance_after, currency, reference)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, user_id, kind, amount, balance_after, currency, COALESCE(reference, ''), created_at
	`

	queryUpdateBalance = `
		UPDATE wallets
		SET balance = $1, updated_at = NOW()
		WHERE user_id = $2
	`

	queryListTransactions = `
		SELECT id, user_id, kind, amount, balance_after, currency, COALESCE(reference, ''), created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	queryGetTransaction = `
		SELECT id, user_id, kind, amount, balance_after, currency, COALESCE(reference, ''), created_at
		FROM wallet_transactions
		WHERE user_id = $1 AND id = $2
	`
)
