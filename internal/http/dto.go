package http

import (
	"time"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/storage"
)

type UserResponse struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Role               string `json:"role,omitempty"`
	PortfolioManagerID *int64 `json:"portfolioManagerId"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

type PortfolioResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type TransactionResponse struct {
	ID              int64   `json:"id"`
	PortfolioID     int64   `json:"portfolioId"`
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
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type ExportResponse struct {
	Key          string `json:"key"`
	Location     string `json:"location"`
	URL          string `json:"url,omitempty"`
	Transactions int    `json:"transactions"`
	CreatedAt    string `json:"createdAt"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Role:               user.Role,
		PortfolioManagerID: user.PortfolioManagerID,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          user.UpdatedAt.Format(time.RFC3339),
	}
}

func usersToResponse(users []domain.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	return resp
}

func portfolioToResponse(p domain.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

func transactionToResponse(tx domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              tx.ID,
		PortfolioID:     tx.PortfolioID,
		StockName:       tx.StockName,
		StockSector:     tx.StockSector,
		TransactionTime: tx.TransactionTime.UTC().Format(time.RFC3339),
		TransactionType: string(tx.TransactionType),
		NumShares:       tx.NumShares.String(),
		Price:           tx.Price.String(),
		Currency:        tx.Currency,
		Execution:       string(tx.Execution),
		Notes:           tx.Notes,
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       tx.UpdatedAt.Format(time.RFC3339),
	}
	if tx.Commissions != nil {
		v := tx.Commissions.String()
		resp.Commissions = &v
	}
	return resp
}

func transactionsToResponse(txs []domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i := range txs {
		resp[i] = transactionToResponse(txs[i])
	}
	return resp
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
