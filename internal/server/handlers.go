package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dodaa08/uniswap-leaderboard/internal/model"
	"github.com/dodaa08/uniswap-leaderboard/internal/store"
	"github.com/dodaa08/uniswap-leaderboard/internal/version"
)

// maxPageSize caps pageSize so one request cannot dump the whole table.
const maxPageSize = 100

type paginationQuery struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"pageSize,default=20"`
}

// traderResponse is the JSON shape for a trader record. Volume is a decimal
// string so clients never see float rounding.
type traderResponse struct {
	Address        string `json:"address"`
	BuyCount       int64  `json:"buyCount"`
	SellCount      int64  `json:"sellCount"`
	TotalVolumeUSD string `json:"totalVolumeUsd"`
	FirstTradeAt   int64  `json:"firstTradeAt"`
	LastTradeAt    int64  `json:"lastTradeAt"`
}

func toTraderResponse(t model.Trader) traderResponse {
	return traderResponse{
		Address:        t.Address,
		BuyCount:       t.BuyCount,
		SellCount:      t.SellCount,
		TotalVolumeUSD: t.TotalVolumeUSD.String(),
		FirstTradeAt:   t.FirstTradeAt,
		LastTradeAt:    t.LastTradeAt,
	}
}

func (s *Server) handleSync(c *gin.Context) {
	summary, err := s.syncer.Run(c.Request.Context())
	if err != nil {
		s.logger.Error("sync run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "sync failed"})
		return
	}

	s.broadcaster.Broadcast(summary)

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"swapsFetched":   summary.SwapsFetched,
		"tradersUpdated": summary.TradersUpdated,
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	var q paginationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Page < 1 || q.PageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page and pageSize must be >= 1"})
		return
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	offset := (q.Page - 1) * q.PageSize
	traders, err := s.store.Leaderboard(c.Request.Context(), q.PageSize, offset)
	if err != nil {
		s.logger.Error("leaderboard query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	resp := make([]traderResponse, 0, len(traders))
	for _, t := range traders {
		resp = append(resp, toTraderResponse(t))
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTrader(c *gin.Context) {
	address := c.Param("address")

	trader, err := s.store.TraderByAddress(c.Request.Context(), address)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "trader not found"})
		return
	}
	if err != nil {
		s.logger.Error("trader query failed", "error", err, "address", address)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trader"})
		return
	}

	c.JSON(http.StatusOK, toTraderResponse(trader))
}

// handleHealth is liveness only: no dependency checks.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "uniswap-leaderboard",
		"version":   version.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
