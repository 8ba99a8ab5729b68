package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/creditrag/internal/classification"
	"github.com/Veraticus/creditrag/internal/common"
	"github.com/Veraticus/creditrag/internal/letter"
	"github.com/Veraticus/creditrag/internal/model"
)

type classifyResponse struct {
	model.ClassificationResult
	NeedsLetter bool `json:"needs_letter"`
}

type resolveRequest struct {
	Items []classification.ItemInput `json:"disputed_accounts"`
}

type disputeRequest struct {
	Details  model.AccountDetails       `json:"account_details"`
	Category string                     `json:"account_category"`
	Items    []classification.ItemInput `json:"disputed_accounts"`
}

type complianceRequest struct {
	Text string `json:"text"`
}

func (s *Server) categorizeAccounts(c *gin.Context) {
	var req []classification.ItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array of accounts"})
		return
	}
	items, err := classification.ItemsFromInput(req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	results, err := s.service.ClassifyBatch(c.Request.Context(), items)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]classifyResponse, len(results))
	for i, r := range results {
		resp[i] = classifyResponse{ClassificationResult: r, NeedsLetter: r.NeedsLetter()}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) resolveCategory(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := classification.ItemsFromInput(req.Items)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_category": s.service.ResolveCategory(items)})
}

func (s *Server) generateDispute(c *gin.Context) {
	var req disputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, err := classification.ItemsFromInput(req.Items)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var category model.Category
	if strings.TrimSpace(req.Category) != "" {
		category = model.ParseCategory(req.Category)
	}

	text, err := s.service.GenerateLetter(c.Request.Context(), req.Details, category, items)
	if err != nil {
		s.writeError(c, err)
		return
	}

	key := "dispute_markdown"
	if s.cfg.LetterFormat == letter.FormatHTML {
		key = "dispute_html"
	}
	c.JSON(http.StatusOK, gin.H{key: text})
}

func (s *Server) checkCompliance(c *gin.Context) {
	var req complianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.service.CheckCompliance(c.Request.Context(), req.Text))
}

func (s *Server) listNamespaces(c *gin.Context) {
	if s.namespaces == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "regulation index not configured"})
		return
	}
	namespaces, err := s.namespaces.ListNamespaces(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if namespaces == nil {
		namespaces = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"namespaces": namespaces})
}

// writeError maps domain errors onto status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var synthErr *common.SynthesisError
	switch {
	case errors.Is(err, common.ErrInputValidation):
		status = http.StatusBadRequest
	case errors.As(err, &synthErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed",
			"path", c.FullPath(),
			"error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
