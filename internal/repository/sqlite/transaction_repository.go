package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
)

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	portfolio_id INTEGER NOT NULL,
	stock_name TEXT NOT NULL,
	stock_sector TEXT NOT NULL DEFAULT '',
	transaction_time DATETIME NOT NULL,
	transaction_type TEXT NOT NULL,
	num_shares TEXT NOT NULL,
	price TEXT NOT NULL,
	currency TEXT NOT NULL,
	execution TEXT NOT NULL,
	commissions TEXT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(portfolio_id) REFERENCES portfolios(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_transactions_portfolio_id ON transactions(portfolio_id);
`

const selectTransactionColumns = `
SELECT t.id, t.portfolio_id, t.stock_name, t.stock_sector, t.transaction_time, t.transaction_type,
	t.num_shares, t.price, t.currency, t.execution, t.commissions, t.notes, t.created_at, t.updated_at
FROM transactions t`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTransactionsTable); err != nil {
		return domain.StorageError("create transactions table", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (int64, error) {
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (portfolio_id, stock_name, stock_sector, transaction_time, transaction_type, num_shares, price, currency, execution, commissions, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.PortfolioID,
		tx.StockName,
		tx.StockSector,
		tx.TransactionTime.UTC(),
		string(tx.TransactionType),
		tx.NumShares.String(),
		tx.Price.String(),
		tx.Currency,
		string(tx.Execution),
		nullDecimal(tx.Commissions),
		tx.Notes,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return 0, domain.StorageError("insert transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.StorageError("transaction last insert id", err)
	}
	tx.ID = id
	return id, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransactionColumns+`
WHERE t.id = ?`,
		id,
	)
	return scanTransaction(row)
}

func (r *TransactionRepository) FindByPortfolio(ctx context.Context, portfolioID int64) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactionColumns+`
WHERE t.portfolio_id = ?
ORDER BY t.transaction_time DESC, t.id DESC`,
		portfolioID,
	)
	if err != nil {
		return nil, domain.StorageError("query portfolio transactions", err)
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactionColumns+`
JOIN portfolios p ON p.id = t.portfolio_id
WHERE p.user_id = ?
ORDER BY t.transaction_time DESC, t.id DESC`,
		userID,
	)
	if err != nil {
		return nil, domain.StorageError("query user transactions", err)
	}
	return collectTransactions(rows)
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE transactions
SET portfolio_id=?, stock_name=?, stock_sector=?, transaction_time=?, transaction_type=?, num_shares=?, price=?, currency=?, execution=?, commissions=?, notes=?, updated_at=?
WHERE id=?`,
		tx.PortfolioID,
		tx.StockName,
		tx.StockSector,
		tx.TransactionTime.UTC(),
		string(tx.TransactionType),
		tx.NumShares.String(),
		tx.Price.String(),
		tx.Currency,
		string(tx.Execution),
		nullDecimal(tx.Commissions),
		tx.Notes,
		time.Now().UTC(),
		tx.ID,
	)
	if err != nil {
		return nil, domain.StorageError("update transaction", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, domain.StorageError("transaction update rows affected", err)
	}
	if aff == 0 {
		return nil, domain.ErrNotFound
	}
	return r.FindByID(ctx, tx.ID)
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=?`, id)
	if err != nil {
		return domain.StorageError("delete transaction", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError("transaction delete rows affected", err)
	}
	if aff == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("iterate transactions", err)
	}
	return txs, nil
}

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	var (
		tx          domain.Transaction
		txType      string
		execution   string
		numShares   string
		price       string
		commissions sql.NullString
	)
	if err := scanner.Scan(
		&tx.ID,
		&tx.PortfolioID,
		&tx.StockName,
		&tx.StockSector,
		&tx.TransactionTime,
		&txType,
		&numShares,
		&price,
		&tx.Currency,
		&execution,
		&commissions,
		&tx.Notes,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.StorageError("scan transaction", err)
	}

	tx.TransactionType = domain.TransactionType(txType)
	tx.Execution = domain.ExecutionType(execution)

	var err error
	if tx.NumShares, err = decimal.NewFromString(numShares); err != nil {
		return nil, domain.StorageError("decode num_shares", fmt.Errorf("transaction %d: %w", tx.ID, err))
	}
	if tx.Price, err = decimal.NewFromString(price); err != nil {
		return nil, domain.StorageError("decode price", fmt.Errorf("transaction %d: %w", tx.ID, err))
	}
	if commissions.Valid {
		c, err := decimal.NewFromString(commissions.String)
		if err != nil {
			return nil, domain.StorageError("decode commissions", fmt.Errorf("transaction %d: %w", tx.ID, err))
		}
		tx.Commissions = &c
	}
	return &tx, nil
}
