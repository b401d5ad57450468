package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
	authorizationPayloadKey = "prefix"
	prefixLength            = 8
)

// authentication checks a "<prefix>.<secret>" bearer key against the configured bcrypt hash.
func (server *Server) authentication(c *gin.Context) {
	authorizationHeader := c.GetHeader(authorizationHeaderKey)

	if len(authorizationHeader) == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("authorization header is not provided")))
		return
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) < 2 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("invalid authorization header format")))
		return
	}

	authorizationType := strings.ToLower(fields[0])
	if authorizationType != authorizationTypeBearer {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(fmt.Errorf("unsupported authorization type: %s", authorizationType)))
		return
	}

	apiKey := fields[1]

	prefix := strings.Split(apiKey, ".")[0]
	if len(prefix) != prefixLength {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
		return
	}

	if server.cfg.Server.APIKeyHash == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("api access is not configured")))
		return
	}

	err := bcrypt.CompareHashAndPassword([]byte(server.cfg.Server.APIKeyHash), []byte(apiKey))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(errors.New("please input a valid API Key")))
		return
	}

	c.Set(authorizationPayloadKey, prefix)
	c.Next()
}

func (server *Server) limiter(prefix string) *rate.Limiter {
	server.mu.Lock()
	defer server.mu.Unlock()

	limiter, ok := server.limiters[prefix]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(server.cfg.Server.RatePerSec), server.cfg.Server.Burst)
		server.limiters[prefix] = limiter
	}
	return limiter
}

func (server *Server) rateLimit(c *gin.Context) {
	prefix := c.GetString(authorizationPayloadKey)
	if prefix == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse(errors.New("authentication error")))
		return
	}

	if !server.limiter(prefix).Allow() {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(errors.New("too many requests")))
		return
	}
	c.Next()
}

// observe records every request in the metrics and the request log.
func (server *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	elapsed := time.Since(start)
	status := c.Writer.Status()
	server.metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	server.metrics.Duration.WithLabelValues(route).Observe(elapsed.Seconds())

	event := log.Info()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("route", route).
		Int("status", status).
		Dur("elapsed", elapsed).
		Msg("request")
}
