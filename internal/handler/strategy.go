package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mwd-agent/internal/service"
)

// StrategyHandler exposes the four strategy generators as direct REST calls.
// The request body is the raw client intake form.
type StrategyHandler struct {
	strategy *service.Strategy
}

func NewStrategyHandler(strategy *service.Strategy) *StrategyHandler {
	return &StrategyHandler{strategy: strategy}
}

// Branding handles POST /branding.
func (h *StrategyHandler) Branding(c *gin.Context) {
	client, ok := bindClientInfo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.strategy.Branding(c.Request.Context(), client))
}

// Website handles POST /website.
func (h *StrategyHandler) Website(c *gin.Context) {
	client, ok := bindClientInfo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.strategy.Website(c.Request.Context(), client))
}

// Social handles POST /social.
func (h *StrategyHandler) Social(c *gin.Context) {
	client, ok := bindClientInfo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.strategy.Social(c.Request.Context(), client))
}

// Copywriting handles POST /copywriting.
func (h *StrategyHandler) Copywriting(c *gin.Context) {
	client, ok := bindClientInfo(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.strategy.Copywriting(c.Request.Context(), client))
}

func bindClientInfo(c *gin.Context) (map[string]any, bool) {
	var client map[string]any
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return nil, false
	}
	return client, true
}
