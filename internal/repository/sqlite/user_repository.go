package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	role TEXT NULL,
	portfolio_manager INTEGER NULL REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_users_portfolio_manager ON users(portfolio_manager);
`

const selectUserColumns = `
SELECT id, created_at, updated_at, email, password, first_name, last_name, role, portfolio_manager
FROM users`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersTable); err != nil {
		return domain.StorageError("create users table", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (created_at, updated_at, email, password, first_name, last_name, role, portfolio_manager)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.CreatedAt,
		user.UpdatedAt,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		nullString(user.Role),
		nullInt64(user.PortfolioManagerID),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return 0, fmt.Errorf("insert user: %w", domain.ErrDuplicateEmail)
		}
		return 0, domain.StorageError("insert user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.StorageError("user last insert id", err)
	}
	user.ID = id
	return id, nil
}

func (r *UserRepository) Find(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+`
ORDER BY id ASC`)
	if err != nil {
		return nil, domain.StorageError("query users", err)
	}
	return collectUsers(rows)
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+`
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUserColumns+`
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) FindByManager(ctx context.Context, managerID int64) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+`
WHERE portfolio_manager = ?
ORDER BY id ASC`,
		managerID,
	)
	if err != nil {
		return nil, domain.StorageError("query managed users", err)
	}
	return collectUsers(rows)
}

// Update writes the mutable profile columns in a single statement; concurrent
// updates of the same row resolve as last write wins.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET first_name=?, last_name=?, role=?, portfolio_manager=?, updated_at=?
WHERE id=?`,
		user.FirstName,
		user.LastName,
		nullString(user.Role),
		nullInt64(user.PortfolioManagerID),
		time.Now().UTC(),
		user.ID,
	)
	if err != nil {
		return nil, domain.StorageError("update user", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, domain.StorageError("user update rows affected", err)
	}
	if aff == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, user.ID)
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("iterate users", err)
	}
	return users, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		user    domain.User
		role    sql.NullString
		manager sql.NullInt64
	)
	if err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&role,
		&manager,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StorageError("scan user", err)
	}
	user.Role = role.String
	if manager.Valid {
		id := manager.Int64
		user.PortfolioManagerID = &id
	}
	return &user, nil
}
