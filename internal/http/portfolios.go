package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createPortfolio(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	portfolio, err := h.portfolios.Create(c.Request.Context(), principalID(c), in)
	if err != nil {
		respondError(c, err, "Creating portfolio failed.")
		return
	}
	c.JSON(http.StatusCreated, portfolioToResponse(*portfolio))
}

func (h *Handler) listPortfolios(c *gin.Context) {
	portfolios, err := h.portfolios.List(c.Request.Context(), principalID(c))
	if err != nil {
		respondError(c, err, "Retrieving portfolios failed.")
		return
	}

	resp := make([]PortfolioResponse, len(portfolios))
	for i := range portfolios {
		resp[i] = portfolioToResponse(portfolios[i])
	}
	c.JSON(http.StatusOK, gin.H{"portfolios": resp})
}

func (h *Handler) getPortfolio(c *gin.Context) {
	id, ok := parseID(c, "pId", "portfolio")
	if !ok {
		return
	}

	portfolio, err := h.portfolios.Get(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving portfolio failed.")
		return
	}
	c.JSON(http.StatusOK, portfolioToResponse(*portfolio))
}

func (h *Handler) createExport(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Statement exports are not configured."})
		return
	}
	id, ok := parseID(c, "pId", "portfolio")
	if !ok {
		return
	}

	exp, err := h.exports.Export(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Exporting statement failed.")
		return
	}
	c.JSON(http.StatusCreated, ExportResponse{
		Key:          exp.Key,
		Location:     exp.Location,
		URL:          exp.URL,
		Transactions: exp.Transactions,
		CreatedAt:    exp.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) listExports(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Statement exports are not configured."})
		return
	}
	id, ok := parseID(c, "pId", "portfolio")
	if !ok {
		return
	}

	objects, err := h.exports.List(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving statements failed.")
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, gin.H{"statements": resp})
}
