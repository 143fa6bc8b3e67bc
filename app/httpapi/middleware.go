package httpapi

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	logMsgRequestHandled = "http request handled"
	logMsgRequestFailed  = "http request failed"

	logAttrMethod     = "method"
	logAttrRoute      = "route"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrError      = "error"

	bearerPrefix = "Bearer "
	ctxKeyAdmin  = "admin"
	corsMaxAge   = 12 * time.Hour

	headerRequestHeaders = "Access-Control-Request-Headers"
	headerAllowHeaders   = "Access-Control-Allow-Headers"
	headerAllowOrigin    = "Access-Control-Allow-Origin"
)

// ErrInvalidCORSConfig is returned by NewRouter for origins gin-contrib/cors does not accept.
var ErrInvalidCORSConfig = errors.New("invalid cors origins")

func newCORS(origins []string) (gin.HandlerFunc, error) {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}

	// a wildcard with credentials has to echo the request origin instead of sending "*"
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidCORSConfig, err)
	}

	return allowRequestedHeaders(cors.New(cfg)), nil
}

// allowRequestedHeaders makes a preflight allow whatever headers the browser asked for.
// Browsers take "*" literally on credentialed requests, so the requested list is echoed instead.
func allowRequestedHeaders(corsHandler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.GetHeader(headerRequestHeaders)
		if c.Request.Method != http.MethodOptions || requested == "" {
			corsHandler(c)
			return
		}

		writer := c.Writer
		c.Writer = preflightWriter{ResponseWriter: writer, allowHeaders: requested}
		corsHandler(c)
		c.Writer = writer
	}
}

type preflightWriter struct {
	gin.ResponseWriter
	allowHeaders string
}

func (w preflightWriter) WriteHeaderNow() {
	if !w.Written() && w.Header().Get(headerAllowOrigin) != "" {
		w.Header().Set(headerAllowHeaders, w.allowHeaders)
	}

	w.ResponseWriter.WriteHeaderNow()
}

func (a *api) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if a.logger == nil {
			return
		}

		status := c.Writer.Status()
		args := []any{
			logAttrMethod, c.Request.Method,
			logAttrRoute, c.FullPath(),
			logAttrStatus, status,
			logAttrDurationMS, float64(time.Since(start).Microseconds()) / 1000,
		}

		switch {
		case status >= http.StatusInternalServerError:
			a.logger.ErrorContext(c.Request.Context(), logMsgRequestHandled, args...)
		case status >= http.StatusBadRequest:
			a.logger.WarnContext(c.Request.Context(), logMsgRequestHandled, args...)
		default:
			a.logger.InfoContext(c.Request.Context(), logMsgRequestHandled, args...)
		}
	}
}

func (a *api) logError(c *gin.Context, msg string, err error) {
	if a.logger == nil {
		return
	}

	a.logger.ErrorContext(c.Request.Context(), msg,
		logAttrMethod, c.Request.Method,
		logAttrRoute, c.FullPath(),
		logAttrError, err.Error(),
	)
}

func (a *api) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), bearerPrefix)
		if !ok || token == "" {
			abortWithDetail(c, http.StatusUnauthorized, detailNotAuthenticated)
			return
		}

		username, err := a.handlers.Authenticator.Verify(token)
		if err != nil {
			abortWithDetail(c, http.StatusUnauthorized, detailInvalidToken)
			return
		}

		c.Set(ctxKeyAdmin, username)
		c.Next()
	}
}
