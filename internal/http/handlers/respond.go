package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/observability"
	"github.com/gin-gonic/gin"
)

// APIError is the envelope every failed request is answered with.
type APIError struct {
	Status    int          `json:"status"`
	Exception APIException `json:"exception"`
}

type APIException struct {
	Code string `json:"code"`
	// Message is a string, or a field -> message object for validation errors.
	Message   interface{} `json:"message"`
	Path      string      `json:"path"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := observability.RequestIDFrom(ctx.Request.Context()); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

// RespondStatus writes the envelope for failures that live outside the
// error taxonomy (rate limiting, media type checks).
func RespondStatus(ctx *gin.Context, status int, code string, message interface{}) {
	ctx.AbortWithStatusJSON(status, APIError{
		Status: status,
		Exception: APIException{
			Code:      code,
			Message:   message,
			Path:      ctx.Request.URL.Path,
			Timestamp: time.Now().UTC(),
			RequestID: requestIDFrom(ctx),
		},
	})
}

// RespondError translates err into the envelope. Causes are logged, never sent.
func RespondError(ctx *gin.Context, err error) {
	kind := apperr.KindOf(err)

	var message interface{} = err.Error()

	e, ok := apperr.As(err)
	switch {
	case !ok:
		message = kind.Message()
	case kind == apperr.KindValidation && len(e.Fields) > 0:
		message = e.Fields
	}

	if kind == apperr.KindGeneral || kind == apperr.KindDatabase {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"err", err,
			"kind", kind.String(),
			"path", ctx.Request.URL.Path,
		)
	}

	RespondStatus(ctx, apperr.HTTPStatus(kind), kind.Code(), message)
}

func RespondKind(ctx *gin.Context, kind apperr.Kind, detail string) {
	RespondError(ctx, apperr.New(kind, detail))
}

func RespondInternal(ctx *gin.Context) {
	RespondStatus(ctx, http.StatusInternalServerError, apperr.KindGeneral.Code(), apperr.KindGeneral.Message())
}
