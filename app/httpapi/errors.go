package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	jsoniter "github.com/json-iterator/go"

	"github.com/readingcorner/library-circulation/app/shared/core"
	"github.com/readingcorner/library-circulation/app/shared/shell/auth"
)

const (
	detailInternalError      = "internal server error"
	detailInvalidCredentials = "Invalid credentials"
	detailNotAuthenticated   = "Not authenticated"
	detailInvalidToken       = "Invalid token"
	detailDatabaseDown       = "database unavailable"
	detailBarcodeImmutable   = "barcode cannot be changed"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// fail renders err. Rejections carry their reason, anything else is logged and hidden behind a 500.
func (a *api) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, err.Error())

	case errors.Is(err, core.ErrIneligibleState), errors.Is(err, core.ErrInvalidInput):
		abortWithDetail(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, auth.ErrInvalidCredentials):
		abortWithDetail(c, http.StatusUnauthorized, detailInvalidCredentials)

	default:
		a.logError(c, logMsgRequestFailed, err)
		abortWithDetail(c, http.StatusInternalServerError, detailInternalError)
	}
}

// bind decodes the JSON body into req and answers 422 if it is malformed, has unknown fields
// or misses required ones.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindWith(req, strictJSON{}); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err.Error())
		return false
	}

	return true
}

var errEmptyBody = errors.New("invalid request")

// strictJSON is the JSON binding with unknown fields rejected. It leaves the gin wide decoder settings alone.
type strictJSON struct{}

func (strictJSON) Name() string {
	return "json"
}

func (strictJSON) Bind(req *http.Request, obj any) error {
	if req == nil || req.Body == nil {
		return errEmptyBody
	}

	decoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(req.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(obj); err != nil {
		return err
	}

	if binding.Validator == nil {
		return nil
	}

	return binding.Validator.ValidateStruct(obj)
}
