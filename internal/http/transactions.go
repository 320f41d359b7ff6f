package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getPortfolioTransactions(c *gin.Context) {
	id, ok := parseID(c, "pId", "portfolio")
	if !ok {
		return
	}

	txs, err := h.transactions.ListByPortfolio(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving transactions failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactionsToResponse(txs)})
}

func (h *Handler) getTransactions(c *gin.Context) {
	txs, err := h.transactions.List(c.Request.Context(), principalID(c))
	if err != nil {
		respondError(c, err, "Retrieving transactions failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactionsToResponse(txs)})
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return
	}

	tx, err := h.transactions.Get(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving transaction failed.")
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) createTransaction(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), principalID(c), in)
	if err != nil {
		respondError(c, err, "Creating transaction failed.")
		return
	}
	c.JSON(http.StatusCreated, transactionToResponse(*tx))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	tx, err := h.transactions.Update(c.Request.Context(), principalID(c), id, in)
	if err != nil {
		respondError(c, err, "Updating transaction failed.")
		return
	}
	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id, ok := parseID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), principalID(c), id); err != nil {
		respondError(c, err, "Deleting transaction failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
