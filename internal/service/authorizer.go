package service

import (
	"context"
	"errors"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/repository"
)

// LoadUserFunc fetches the target user. It returns domain.ErrNotFound when the
// user does not exist. Within one check the record is read at most once.
type LoadUserFunc func(ctx context.Context) (*domain.User, error)

// Rule reports whether principalID may access the user identified by targetID.
// Rules that only compare ids must not call load.
type Rule func(ctx context.Context, principalID, targetID int64, load LoadUserFunc) (bool, error)

// SelfOnly grants access to a principal's own record.
func SelfOnly(_ context.Context, principalID, targetID int64, _ LoadUserFunc) (bool, error) {
	return principalID == targetID, nil
}

// ManagerOf grants access when the principal is the target's portfolio manager.
func ManagerOf(ctx context.Context, principalID, targetID int64, load LoadUserFunc) (bool, error) {
	target, err := load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return target.ManagedBy(principalID), nil
}

const (
	msgUserForbidden        = "Not authorized to access this user."
	msgUserNotFound         = "User with this id does not exist."
	msgPortfolioForbidden   = "Not authorized to access this portfolio."
	msgPortfolioNotFound    = "Portfolio with this id does not exist."
	msgTransactionForbidden = "Not authorized to access this transaction."
	msgTransactionNotFound  = "Transaction with this id does not exist."
	msgAdminRequired        = "Not authorized to list users."
)

// Authorizer decides whether a principal may touch a user, portfolio or
// transaction, and returns the verified record on success. Access to a
// portfolio or transaction is access to the user who owns it.
type Authorizer struct {
	users        repository.UserRepository
	portfolios   repository.PortfolioRepository
	transactions repository.TransactionRepository
	rules        []Rule
	adminRole    string
}

// NewAuthorizer builds an Authorizer. Access is granted when any rule allows it;
// with no rules it defaults to SelfOnly.
func NewAuthorizer(users repository.UserRepository, portfolios repository.PortfolioRepository, transactions repository.TransactionRepository, adminRole string, rules ...Rule) *Authorizer {
	if len(rules) == 0 {
		rules = []Rule{SelfOnly}
	}
	return &Authorizer{
		users:        users,
		portfolios:   portfolios,
		transactions: transactions,
		rules:        rules,
		adminRole:    adminRole,
	}
}

// AuthorizeUser returns the target user when principalID may access it.
func (a *Authorizer) AuthorizeUser(ctx context.Context, principalID, targetID int64) (*domain.User, error) {
	load := a.loader(targetID)
	allowed, err := a.allowed(ctx, principalID, targetID, load)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.Unauthorized(msgUserForbidden)
	}

	user, err := load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

// AuthorizePortfolio returns the portfolio when principalID may access its owner.
func (a *Authorizer) AuthorizePortfolio(ctx context.Context, principalID, portfolioID int64) (*domain.Portfolio, error) {
	portfolio, err := a.portfolios.FindByID(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgPortfolioNotFound)
		}
		return nil, err
	}

	allowed, err := a.allowed(ctx, principalID, portfolio.UserID, a.loader(portfolio.UserID))
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.Unauthorized(msgPortfolioForbidden)
	}
	return portfolio, nil
}

// AuthorizeTransaction resolves transaction, portfolio and owner, then applies the rules.
func (a *Authorizer) AuthorizeTransaction(ctx context.Context, principalID, transactionID int64) (*domain.Transaction, error) {
	tx, err := a.transactions.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgTransactionNotFound)
		}
		return nil, err
	}

	portfolio, err := a.portfolios.FindByID(ctx, tx.PortfolioID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgPortfolioNotFound)
		}
		return nil, err
	}

	allowed, err := a.allowed(ctx, principalID, portfolio.UserID, a.loader(portfolio.UserID))
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.Unauthorized(msgTransactionForbidden)
	}
	return tx, nil
}

// AuthorizeAdmin returns the principal when it carries the administrator role.
func (a *Authorizer) AuthorizeAdmin(ctx context.Context, principalID int64) (*domain.User, error) {
	principal, err := a.users.FindByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized(msgAdminRequired)
		}
		return nil, err
	}
	if a.adminRole == "" || principal.Role != a.adminRole {
		return nil, domain.Unauthorized(msgAdminRequired)
	}
	return principal, nil
}

func (a *Authorizer) allowed(ctx context.Context, principalID, targetID int64, load LoadUserFunc) (bool, error) {
	for _, rule := range a.rules {
		ok, err := rule(ctx, principalID, targetID, load)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (a *Authorizer) loader(id int64) LoadUserFunc {
	var (
		user   *domain.User
		err    error
		loaded bool
	)
	return func(ctx context.Context) (*domain.User, error) {
		if !loaded {
			user, err = a.users.FindByID(ctx, id)
			loaded = true
		}
		return user, err
	}
}
