package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/service"
	"portfolio-tracker/internal/storage"
)

// ErrShuttingDown is returned for exports requested after Shutdown.
var ErrShuttingDown = errors.New("exporter is shutting down")

// Manager writes portfolio statements to object storage.
type Manager interface {
	Export(ctx context.Context, principalID, portfolioID int64) (*Export, error)
	List(ctx context.Context, principalID, portfolioID int64) ([]storage.ObjectInfo, error)
	Shutdown()
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	MaxConcurrent int
	URLExpiry     time.Duration
	Logger        *logrus.Logger
}

// Export describes one uploaded statement.
type Export struct {
	Key          string
	Location     string
	URL          string
	Transactions int
	CreatedAt    time.Time
}

type manager struct {
	cfg          Config
	portfolios   service.PortfolioService
	transactions service.TransactionService
	storage      storage.Service

	sem     chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closing bool
	now     func() time.Time
}

func NewManager(cfg Config, portfolios service.PortfolioService, transactions service.TransactionService, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &manager{
		cfg:          cfg,
		portfolios:   portfolios,
		transactions: transactions,
		storage:      store,
		sem:          make(chan struct{}, cfg.MaxConcurrent),
		now:          time.Now,
	}
}

// Export authorizes the portfolio, then serializes and uploads its statement.
// At most MaxConcurrent uploads run at once; callers wait for a slot or ctx.
func (m *manager) Export(ctx context.Context, principalID, portfolioID int64) (*Export, error) {
	if !m.begin() {
		return nil, ErrShuttingDown
	}
	defer m.wg.Done()

	portfolio, err := m.portfolios.Get(ctx, principalID, portfolioID)
	if err != nil {
		return nil, err
	}
	txs, err := m.transactions.ListByPortfolio(ctx, principalID, portfolio.ID)
	if err != nil {
		return nil, err
	}

	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	createdAt := m.now().UTC()
	body, err := json.MarshalIndent(newStatement(*portfolio, txs, createdAt), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode statement: %w", err)
	}

	key := path.Join(m.portfolioPrefix(portfolio.ID), fmt.Sprintf("%s-%s.json", createdAt.Format("20060102T150405Z"), uuid.NewString()))
	location, err := m.storage.Put(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      m.cfg.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	url, err := m.storage.GetObjectURL(ctx, m.cfg.Bucket, key, m.cfg.URLExpiry)
	if err != nil {
		m.cfg.Logger.WithError(err).WithField("key", key).Warn("presign statement")
	}

	m.cfg.Logger.WithFields(logrus.Fields{
		"portfolio":    portfolio.ID,
		"transactions": len(txs),
		"location":     location,
	}).Info("statement exported")

	return &Export{
		Key:          key,
		Location:     location,
		URL:          url,
		Transactions: len(txs),
		CreatedAt:    createdAt,
	}, nil
}

// List returns the statements previously exported for an accessible portfolio.
func (m *manager) List(ctx context.Context, principalID, portfolioID int64) ([]storage.ObjectInfo, error) {
	portfolio, err := m.portfolios.Get(ctx, principalID, portfolioID)
	if err != nil {
		return nil, err
	}
	return m.storage.ListObjects(ctx, m.cfg.Bucket, m.portfolioPrefix(portfolio.ID)+"/")
}

// Shutdown rejects new exports and waits for running ones.
func (m *manager) Shutdown() {
	m.mu.Lock()
	m.closing = true
	m.mu.Unlock()
	m.wg.Wait()
	m.cfg.Logger.Info("exporter stopped")
}

func (m *manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return false
	}
	m.wg.Add(1)
	return true
}

func (m *manager) portfolioPrefix(portfolioID int64) string {
	return path.Join(m.cfg.KeyPrefix, fmt.Sprintf("portfolio-%d", portfolioID))
}

type statement struct {
	Portfolio    statementPortfolio     `json:"portfolio"`
	GeneratedAt  time.Time              `json:"generatedAt"`
	Transactions []statementTransaction `json:"transactions"`
}

type statementPortfolio struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
}

type statementTransaction struct {
	ID              int64   `json:"id"`
	StockName       string  `json:"stockName"`
	StockSector     string  `json:"stockSector,omitempty"`
	TransactionTime string  `json:"transactionTime"`
	TransactionType string  `json:"transactionType"`
	NumShares       string  `json:"numShares"`
	Price           string  `json:"price"`
	Currency        string  `json:"currency"`
	Execution       string  `json:"execution"`
	Commissions     *string `json:"commissions,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

func newStatement(p domain.Portfolio, txs []domain.Transaction, at time.Time) statement {
	st := statement{
		Portfolio:    statementPortfolio{ID: p.ID, UserID: p.UserID, Name: p.Name},
		GeneratedAt:  at,
		Transactions: make([]statementTransaction, len(txs)),
	}
	for i, tx := range txs {
		st.Transactions[i] = statementTransaction{
			ID:              tx.ID,
			StockName:       tx.StockName,
			StockSector:     tx.StockSector,
			TransactionTime: tx.TransactionTime.UTC().Format(time.RFC3339),
			TransactionType: string(tx.TransactionType),
			NumShares:       tx.NumShares.String(),
			Price:           tx.Price.String(),
			Currency:        tx.Currency,
			Execution:       string(tx.Execution),
			Notes:           tx.Notes,
		}
		if tx.Commissions != nil {
			c := tx.Commissions.String()
			st.Transactions[i].Commissions = &c
		}
	}
	return st
}
