package users

const (
	queryCreate = `
		INSERT INTO users (email, password_hash, display_name, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, display_name, is_admin, is_disabled, created_at, updated_at
	`

	queryFindByEmail = `
		SELECT id, email, password_hash, display_name, is_admin, is_disabled, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	queryFindByID = `
		SELECT id, email, password_hash, display_name, is_admin, is_disabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`
)
