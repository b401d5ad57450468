package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	db "github.com/banachtech/statarb/db/sqlc"
	"github.com/banachtech/statarb/screen"
	"github.com/banachtech/statarb/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type screenRequest struct {
	Tickers []string `json:"tickers"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	// Params overrides the configured thresholds field by field.
	Params json.RawMessage `json:"params"`
}

type screenResponse struct {
	ID         int64              `json:"id"`
	Tickers    []string           `json:"tickers"`
	Candidates []screen.Candidate `json:"candidates"`
}

func (server *Server) screen(c *gin.Context) {
	var req screenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	tickers := server.cfg.Universe
	if len(req.Tickers) > 0 {
		tickers = req.Tickers
	}
	tickers = util.FormatTickers(tickers)
	if len(tickers) < 2 {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(errors.New("at least two tickers are required")))
		return
	}

	params := server.cfg.Screen
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}
	if err := params.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	startDate, endDate := orDefault(req.Start, server.cfg.Start), orDefault(req.End, server.cfg.End)
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	tbl, err := server.source.Closes(c.Request.Context(), tickers, start, end)
	if err != nil {
		c.AbortWithStatusJSON(sourceStatus(err), errorResponse(fmt.Errorf("failed to load prices: %w", err)))
		return
	}
	tbl = tbl.DropSparse(params.MinSamples)

	cands, err := screen.Screen(c.Request.Context(), tbl, params)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	server.metrics.Candidates.Set(float64(len(cands)))

	run, err := db.NewScreenRun(startDate, endDate, tbl.Tickers(), params, cands)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	id, err := server.store.SaveScreen(c, run)
	if err != nil {
		log.Error().Err(err).Msg("failed to save screen")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, screenResponse{ID: id, Tickers: tbl.Tickers(), Candidates: cands})
}

func (server *Server) latestScreen(c *gin.Context) {
	run, err := server.store.LatestCandidates(c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse(err))
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         run.ID,
		"created_at": run.CreatedAt,
		"start":      run.StartDate,
		"end":        run.EndDate,
		"candidates": run.ScreenCandidates(),
	})
}
