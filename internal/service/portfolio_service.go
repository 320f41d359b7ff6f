package service

import (
	"context"
	"strings"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
	"portfolio-tracker/internal/validation"
)

// PortfolioService manages the principal's portfolios.
type PortfolioService interface {
	Create(ctx context.Context, principalID int64, in validation.Input) (*domain.Portfolio, error)
	List(ctx context.Context, principalID int64) ([]domain.Portfolio, error)
	Get(ctx context.Context, principalID, portfolioID int64) (*domain.Portfolio, error)
}

type portfolioService struct {
	portfolios repository.PortfolioRepository
	authz      *Authorizer
}

func NewPortfolioService(portfolios repository.PortfolioRepository, authz *Authorizer) PortfolioService {
	return &portfolioService{portfolios: portfolios, authz: authz}
}

func (s *portfolioService) Create(ctx context.Context, principalID int64, in validation.Input) (*domain.Portfolio, error) {
	if err := validation.PortfolioRules.Check(in); err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{
		UserID: principalID,
		Name:   strings.TrimSpace(validation.Stringify(in["name"])),
	}
	if _, err := s.portfolios.Create(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

func (s *portfolioService) List(ctx context.Context, principalID int64) ([]domain.Portfolio, error) {
	return s.portfolios.FindByUser(ctx, principalID)
}

func (s *portfolioService) Get(ctx context.Context, principalID, portfolioID int64) (*domain.Portfolio, error) {
	return s.authz.AuthorizePortfolio(ctx, principalID, portfolioID)
}
