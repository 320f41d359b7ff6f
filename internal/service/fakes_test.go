package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"portfolio-tracker/internal/domain"
)

var errStoreDown = errors.New("database is locked")

type fakeUsers struct {
	mu    sync.Mutex
	rows  map[int64]domain.User
	next  int64
	reads int
	fail  error
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{rows: map[int64]domain.User{}}
	for _, u := range users {
		f.rows[u.ID] = u
		if u.ID > f.next {
			f.next = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Init(context.Context) error { return nil }

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == user.Email {
			return 0, domain.ErrDuplicateEmail
		}
	}
	f.next++
	user.ID = f.next
	f.rows[user.ID] = *user
	return user.ID, nil
}

func (f *fakeUsers) Find(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.fail != nil {
		return nil, domain.StorageError("query users", f.fail)
	}
	out := []domain.User{}
	for _, u := range f.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.fail != nil {
		return nil, domain.StorageError("scan user", f.fail)
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	for _, u := range f.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) FindByManager(_ context.Context, managerID int64) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.User{}
	for _, u := range f.rows {
		if u.ManagedBy(managerID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, domain.StorageError("update user", f.fail)
	}
	if _, ok := f.rows[user.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.rows[user.ID] = *user
	saved := *user
	return &saved, nil
}

type fakePortfolios struct {
	rows map[int64]domain.Portfolio
	next int64
}

func newFakePortfolios(portfolios ...domain.Portfolio) *fakePortfolios {
	f := &fakePortfolios{rows: map[int64]domain.Portfolio{}}
	for _, p := range portfolios {
		f.rows[p.ID] = p
		if p.ID > f.next {
			f.next = p.ID
		}
	}
	return f
}

func (f *fakePortfolios) Init(context.Context) error { return nil }

func (f *fakePortfolios) Create(_ context.Context, p *domain.Portfolio) (int64, error) {
	f.next++
	p.ID = f.next
	f.rows[p.ID] = *p
	return p.ID, nil
}

func (f *fakePortfolios) FindByID(_ context.Context, id int64) (*domain.Portfolio, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakePortfolios) FindByUser(_ context.Context, userID int64) ([]domain.Portfolio, error) {
	out := []domain.Portfolio{}
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTransactions struct {
	rows       map[int64]domain.Transaction
	portfolios *fakePortfolios
	next       int64
	writes     int
	fail       error
}

func newFakeTransactions(portfolios *fakePortfolios, txs ...domain.Transaction) *fakeTransactions {
	f := &fakeTransactions{rows: map[int64]domain.Transaction{}, portfolios: portfolios}
	for _, tx := range txs {
		f.rows[tx.ID] = tx
		if tx.ID > f.next {
			f.next = tx.ID
		}
	}
	return f
}

func (f *fakeTransactions) Init(context.Context) error { return nil }

func (f *fakeTransactions) Create(_ context.Context, tx *domain.Transaction) (int64, error) {
	f.writes++
	if f.fail != nil {
		return 0, domain.StorageError("insert transaction", f.fail)
	}
	f.next++
	tx.ID = f.next
	f.rows[tx.ID] = *tx
	return tx.ID, nil
}

func (f *fakeTransactions) FindByID(_ context.Context, id int64) (*domain.Transaction, error) {
	tx, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tx, nil
}

func (f *fakeTransactions) FindByPortfolio(_ context.Context, portfolioID int64) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, tx := range f.rows {
		if tx.PortfolioID == portfolioID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) FindByUser(_ context.Context, userID int64) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	for _, tx := range f.rows {
		if p, ok := f.portfolios.rows[tx.PortfolioID]; ok && p.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (f *fakeTransactions) Update(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.writes++
	if f.fail != nil {
		return nil, domain.StorageError("update transaction", f.fail)
	}
	if _, ok := f.rows[tx.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	f.rows[tx.ID] = *tx
	saved := *tx
	return &saved, nil
}

func (f *fakeTransactions) Delete(_ context.Context, id int64) error {
	f.writes++
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}
