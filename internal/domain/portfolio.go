package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "buy"
	TransactionTypeSell TransactionType = "sell"
)

type ExecutionType string

const (
	ExecutionTypeMarket ExecutionType = "market"
	ExecutionTypeLimit  ExecutionType = "limit"
)

// Portfolio groups transactions and belongs to exactly one user.
type Portfolio struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is a single buy or sell of a stock within a portfolio.
type Transaction struct {
	ID              int64
	PortfolioID     int64
	StockName       string
	StockSector     string
	TransactionTime time.Time
	TransactionType TransactionType
	NumShares       decimal.Decimal
	Price           decimal.Decimal
	Currency        string
	Execution       ExecutionType
	Commissions     *decimal.Decimal
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
