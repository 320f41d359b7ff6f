package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
)

const createPortfoliosTable = `
CREATE TABLE IF NOT EXISTS portfolios (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_portfolios_user_id ON portfolios(user_id);
`

type PortfolioRepository struct {
	db *sql.DB
}

func NewPortfolioRepository(db *sql.DB) repository.PortfolioRepository {
	return &PortfolioRepository{db: db}
}

func (r *PortfolioRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPortfoliosTable); err != nil {
		return domain.StorageError("create portfolios table", err)
	}
	return nil
}

func (r *PortfolioRepository) Create(ctx context.Context, portfolio *domain.Portfolio) (int64, error) {
	now := time.Now().UTC()
	portfolio.CreatedAt = now
	portfolio.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO portfolios (user_id, name, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		portfolio.UserID,
		portfolio.Name,
		portfolio.CreatedAt,
		portfolio.UpdatedAt,
	)
	if err != nil {
		return 0, domain.StorageError("insert portfolio", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.StorageError("portfolio last insert id", err)
	}
	portfolio.ID = id
	return id, nil
}

func (r *PortfolioRepository) FindByID(ctx context.Context, id int64) (*domain.Portfolio, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, created_at, updated_at
FROM portfolios
WHERE id = ?`,
		id,
	)
	return scanPortfolio(row)
}

func (r *PortfolioRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Portfolio, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, created_at, updated_at
FROM portfolios
WHERE user_id = ?
ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, domain.StorageError("query portfolios", err)
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("iterate portfolios", err)
	}
	return portfolios, nil
}

func scanPortfolio(row interface {
	Scan(dest ...any) error
}) (*domain.Portfolio, error) {
	var p domain.Portfolio
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StorageError("scan portfolio", err)
	}
	return &p, nil
}
