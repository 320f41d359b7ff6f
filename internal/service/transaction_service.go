package service

import (
	"context"
	"errors"
	"fmt"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
	"portfolio-tracker/internal/validation"
)

// TransactionService handles transaction requests. Each write runs validation,
// then authorization, then persistence; the first failing stage decides the
// classification of the returned error.
type TransactionService interface {
	ListByPortfolio(ctx context.Context, principalID, portfolioID int64) ([]domain.Transaction, error)
	List(ctx context.Context, principalID int64) ([]domain.Transaction, error)
	Get(ctx context.Context, principalID, transactionID int64) (*domain.Transaction, error)
	Create(ctx context.Context, principalID int64, in validation.Input) (*domain.Transaction, error)
	Update(ctx context.Context, principalID, transactionID int64, in validation.Input) (*domain.Transaction, error)
	Delete(ctx context.Context, principalID, transactionID int64) error
}

type transactionService struct {
	transactions repository.TransactionRepository
	authz        *Authorizer
}

func NewTransactionService(transactions repository.TransactionRepository, authz *Authorizer) TransactionService {
	return &transactionService{transactions: transactions, authz: authz}
}

func (s *transactionService) ListByPortfolio(ctx context.Context, principalID, portfolioID int64) ([]domain.Transaction, error) {
	portfolio, err := s.authz.AuthorizePortfolio(ctx, principalID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.transactions.FindByPortfolio(ctx, portfolio.ID)
}

func (s *transactionService) List(ctx context.Context, principalID int64) ([]domain.Transaction, error) {
	return s.transactions.FindByUser(ctx, principalID)
}

func (s *transactionService) Get(ctx context.Context, principalID, transactionID int64) (*domain.Transaction, error) {
	return s.authz.AuthorizeTransaction(ctx, principalID, transactionID)
}

func (s *transactionService) Create(ctx context.Context, principalID int64, in validation.Input) (*domain.Transaction, error) {
	tx, err := parseTransaction(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.authz.AuthorizePortfolio(ctx, principalID, tx.PortfolioID); err != nil {
		return nil, err
	}

	if _, err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) Update(ctx context.Context, principalID, transactionID int64, in validation.Input) (*domain.Transaction, error) {
	tx, err := parseTransaction(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.authz.AuthorizeTransaction(ctx, principalID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.PortfolioID != existing.PortfolioID {
		if _, err := s.authz.AuthorizePortfolio(ctx, principalID, tx.PortfolioID); err != nil {
			return nil, err
		}
	}

	tx.ID = existing.ID
	saved, err := s.transactions.Update(ctx, tx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgTransactionNotFound)
		}
		return nil, err
	}
	return saved, nil
}

func (s *transactionService) Delete(ctx context.Context, principalID, transactionID int64) error {
	tx, err := s.authz.AuthorizeTransaction(ctx, principalID, transactionID)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, tx.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound(msgTransactionNotFound)
		}
		return err
	}
	return nil
}

// parseTransaction validates the raw body and converts it into a Transaction.
func parseTransaction(in validation.Input) (*domain.Transaction, error) {
	if err := validation.TransactionRules.Check(in); err != nil {
		return nil, err
	}

	portfolioID, err := validation.Int64(in["portfolioId"])
	if err != nil {
		return nil, fmt.Errorf("portfolioId: %w", err)
	}
	at, err := validation.Time(in["transactionTime"])
	if err != nil {
		return nil, fmt.Errorf("transactionTime: %w", err)
	}
	numShares, err := validation.Decimal(in["numShares"])
	if err != nil {
		return nil, fmt.Errorf("numShares: %w", err)
	}
	price, err := validation.Decimal(in["price"])
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	tx := &domain.Transaction{
		PortfolioID:     portfolioID,
		StockName:       validation.Stringify(in["stockName"]),
		StockSector:     validation.Stringify(in["stockSector"]),
		TransactionTime: at,
		TransactionType: domain.TransactionType(validation.Stringify(in["transactionType"])),
		NumShares:       numShares,
		Price:           price,
		Currency:        validation.Stringify(in["currency"]),
		Execution:       domain.ExecutionType(validation.Stringify(in["execution"])),
		Notes:           validation.Stringify(in["notes"]),
	}
	if raw := in["commissions"]; raw != nil {
		c, err := validation.Decimal(raw)
		if err != nil {
			return nil, fmt.Errorf("commissions: %w", err)
		}
		tx.Commissions = &c
	}
	return tx, nil
}
