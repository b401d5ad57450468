package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/banachtech/statarb/backtest"
	"github.com/banachtech/statarb/data"
	db "github.com/banachtech/statarb/db/sqlc"
	"github.com/banachtech/statarb/mainfuncs"
	"github.com/banachtech/statarb/report"
	"github.com/banachtech/statarb/spread"
	"github.com/banachtech/statarb/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type backtestRequest struct {
	X              string   `json:"x" binding:"required"`
	Y              string   `json:"y" binding:"required"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	Lookback       int      `json:"lookback"`
	EntryZ         *float64 `json:"entry_z"`
	ExitZ          *float64 `json:"exit_z"`
	StopZ          *float64 `json:"stop_z"`
	InitialCapital *float64 `json:"initial_capital"`
	TCBps          *float64 `json:"tc_bps"`
}

type backtestResponse struct {
	ID      uuid.UUID        `json:"id"`
	Pair    string           `json:"pair"`
	Summary backtest.Summary `json:"summary"`
	Trades  int              `json:"trades"`
	Ledger  backtest.Ledger  `json:"ledger"`
}

func (server *Server) backtest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	cfg := *server.cfg
	cfg.Start = orDefault(req.Start, cfg.Start)
	cfg.End = orDefault(req.End, cfg.End)
	if req.Lookback != 0 {
		cfg.Lookback = req.Lookback
	}
	setFloat(&cfg.Signals.Entry, req.EntryZ)
	setFloat(&cfg.Signals.Exit, req.ExitZ)
	setFloat(&cfg.Signals.Stop, req.StopZ)
	setFloat(&cfg.Backtest.InitialCapital, req.InitialCapital)
	setFloat(&cfg.Backtest.TCBps, req.TCBps)
	if err := cfg.Validate(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	x, y := strings.ToUpper(req.X), strings.ToUpper(req.Y)
	if x == y {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(errors.New("x and y must differ")))
		return
	}

	run, err := mainfuncs.BacktestPair(c.Request.Context(), &cfg, server.source, x, y)
	if err != nil {
		server.metrics.Backtests.WithLabelValues("error").Inc()
		c.AbortWithStatusJSON(sourceStatus(err), errorResponse(err))
		return
	}
	server.metrics.Backtests.WithLabelValues("ok").Inc()

	id, err := server.store.SaveBacktest(c, db.NewBacktestRun(x, y, cfg.Start, cfg.End, cfg.Lookback, cfg.Signals, cfg.Backtest, run.Result))
	if err != nil {
		log.Error().Err(err).Str("pair", run.Pair.Name()).Msg("failed to save backtest")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, backtestResponse{
		ID:      id,
		Pair:    run.Pair.Name(),
		Summary: run.Result.Summary,
		Trades:  run.Result.Ledger.Trades(),
		Ledger:  run.Result.Ledger,
	})
}

func (server *Server) loadBacktest(c *gin.Context) (db.BacktestRun, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(err))
		return db.BacktestRun{}, false
	}

	run, err := server.store.GetBacktest(c, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusNotFound, errorResponse(err))
			return db.BacktestRun{}, false
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return db.BacktestRun{}, false
	}
	return run, true
}

func (server *Server) getBacktest(c *gin.Context) {
	run, ok := server.loadBacktest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run)
}

func (server *Server) backtestWorkbook(c *gin.Context) {
	run, ok := server.loadBacktest(c)
	if !ok {
		return
	}
	res, err := run.Result()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	title := run.Y + "/" + run.X
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%v_%v.xlsx"`, run.Y, run.X))
	c.Status(http.StatusOK)
	if err := report.Write(c.Writer, title, res); err != nil {
		log.Error().Err(err).Str("id", run.ID.String()).Msg("failed to write workbook")
	}
}

// sourceStatus maps pipeline errors to a status code.
func sourceStatus(err error) int {
	switch {
	case errors.Is(err, data.ErrUnknownTicker), errors.Is(err, data.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, spread.ErrInvalidInput), errors.Is(err, backtest.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func parseRange(startDate, endDate string) (start, end time.Time, err error) {
	if start, err = util.ParseDate(startDate); err != nil {
		return
	}
	if end, err = util.ParseDate(endDate); err != nil {
		return
	}
	if !end.After(start) {
		err = fmt.Errorf("end %v must be after start %v", endDate, startDate)
	}
	return
}
