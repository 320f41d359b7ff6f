package repository

import (
	"context"

	"portfolio-tracker/internal/domain"
)

// PortfolioRepository exposes persistence operations for portfolios.
type PortfolioRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, portfolio *domain.Portfolio) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Portfolio, error)
	FindByUser(ctx context.Context, userID int64) ([]domain.Portfolio, error)
}

// TransactionRepository exposes persistence operations for transactions.
// Listing is always scoped by portfolio or by the portfolios' owner.
type TransactionRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, tx *domain.Transaction) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Transaction, error)
	FindByPortfolio(ctx context.Context, portfolioID int64) ([]domain.Transaction, error)
	FindByUser(ctx context.Context, userID int64) ([]domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
}
