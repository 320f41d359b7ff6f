package exporter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/exporter"
	"portfolio-tracker/internal/storage"
	"portfolio-tracker/internal/validation"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func (s *memoryStorage) Put(_ context.Context, body io.Reader, opts storage.PutOptions) (string, error) {
	if s.failPut != nil {
		return "", s.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[opts.Key] = data
	return fmt.Sprintf("s3://%s/%s", opts.Bucket, opts.Key), nil
}

func (s *memoryStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return out, nil
}

func (s *memoryStorage) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example/" + key, nil
}

type stubPortfolios struct {
	owner int64
}

func (s stubPortfolios) Create(context.Context, int64, validation.Input) (*domain.Portfolio, error) {
	return nil, errors.New("not implemented")
}

func (s stubPortfolios) List(context.Context, int64) ([]domain.Portfolio, error) {
	return nil, errors.New("not implemented")
}

func (s stubPortfolios) Get(_ context.Context, principalID, portfolioID int64) (*domain.Portfolio, error) {
	if principalID != s.owner {
		return nil, domain.Unauthorized("Not authorized to access this portfolio.")
	}
	return &domain.Portfolio{ID: portfolioID, UserID: s.owner, Name: "Main"}, nil
}

type stubTransactions struct{}

func (stubTransactions) ListByPortfolio(_ context.Context, _, portfolioID int64) ([]domain.Transaction, error) {
	fee := decimal.RequireFromString("0.99")
	return []domain.Transaction{{
		ID:              1,
		PortfolioID:     portfolioID,
		StockName:       "ACME",
		TransactionTime: time.Date(2022, 3, 20, 0, 0, 0, 0, time.UTC),
		TransactionType: domain.TransactionTypeBuy,
		NumShares:       decimal.NewFromInt(4),
		Price:           decimal.RequireFromString("10.10"),
		Currency:        "USD",
		Execution:       domain.ExecutionTypeMarket,
		Commissions:     &fee,
	}}, nil
}

func (stubTransactions) List(context.Context, int64) ([]domain.Transaction, error) { return nil, nil }

func (stubTransactions) Get(context.Context, int64, int64) (*domain.Transaction, error) {
	return nil, nil
}

func (stubTransactions) Create(context.Context, int64, validation.Input) (*domain.Transaction, error) {
	return nil, nil
}

func (stubTransactions) Update(context.Context, int64, int64, validation.Input) (*domain.Transaction, error) {
	return nil, nil
}

func (stubTransactions) Delete(context.Context, int64, int64) error { return nil }

func newTestManager(store storage.Service) exporter.Manager {
	return exporter.NewManager(exporter.Config{Bucket: "statements", KeyPrefix: "/exports/"}, stubPortfolios{owner: 5}, stubTransactions{}, store)
}

func TestManager_Export(t *testing.T) {
	store := &memoryStorage{}
	m := newTestManager(store)
	defer m.Shutdown()

	exp, err := m.Export(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.HasPrefix(exp.Key, "exports/portfolio-10/") || !strings.HasSuffix(exp.Key, ".json") {
		t.Fatalf("unexpected key %s", exp.Key)
	}
	if exp.Location != "s3://statements/"+exp.Key || exp.URL == "" || exp.Transactions != 1 {
		t.Fatalf("unexpected export %+v", exp)
	}

	var doc struct {
		Portfolio struct {
			ID int64 `json:"id"`
		} `json:"portfolio"`
		Transactions []struct {
			Price       string  `json:"price"`
			Commissions *string `json:"commissions"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(store.objects[exp.Key], &doc); err != nil {
		t.Fatalf("decode statement: %v", err)
	}
	if doc.Portfolio.ID != 10 || len(doc.Transactions) != 1 || doc.Transactions[0].Price != "10.1" {
		t.Fatalf("unexpected statement %+v", doc)
	}
	if doc.Transactions[0].Commissions == nil || *doc.Transactions[0].Commissions != "0.99" {
		t.Fatalf("expected commissions in statement, got %+v", doc.Transactions[0])
	}

	listed, err := m.List(context.Background(), 5, 10)
	if err != nil || len(listed) != 1 || listed[0].Key != exp.Key {
		t.Fatalf("expected the export to be listed, got %+v, %v", listed, err)
	}
}

func TestManager_ExportUnauthorized(t *testing.T) {
	store := &memoryStorage{}
	m := newTestManager(store)
	defer m.Shutdown()

	if _, err := m.Export(context.Background(), 6, 10); domain.KindOf(err) != domain.KindUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Fatal("expected nothing uploaded")
	}
}

func TestManager_UploadFailure(t *testing.T) {
	store := &memoryStorage{failPut: errors.New("bucket unavailable")}
	m := newTestManager(store)
	defer m.Shutdown()

	if _, err := m.Export(context.Background(), 5, 10); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestManager_RejectsAfterShutdown(t *testing.T) {
	m := newTestManager(&memoryStorage{})
	m.Shutdown()

	if _, err := m.Export(context.Background(), 5, 10); !errors.Is(err, exporter.ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown, got %v", err)
	}
}
