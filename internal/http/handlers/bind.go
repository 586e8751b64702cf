package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/geocoder89/taskmanager/internal/apperr"
	"github.com/geocoder89/taskmanager/internal/domain/task"
	"github.com/gin-gonic/gin"
)

// BindJSON decodes the body into out. Field rules are checked by the
// services, so only decoding failures are reported here.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondStatus(ctx, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit))
			return false
		}

		RespondError(ctx, parseBindError(err))

		return false
	}

	return true
}

func parseBindError(err error) error {
	if errors.Is(err, task.ErrInvalidDate) {
		return apperr.Wrap(apperr.KindInvalidDate, "dueDate must be YYYY-MM-DD", err)
	}

	if errors.Is(err, io.EOF) {
		return apperr.Wrap(apperr.KindInvalidInput, "request body is empty", err)
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.Wrap(apperr.KindInvalidInput, "malformed JSON body", err)
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)
		if field == "" {
			return apperr.Wrap(apperr.KindInvalidInput, "request body must be a JSON object", err)
		}

		return apperr.Wrap(apperr.KindInvalidInput,
			fmt.Sprintf("%s must be of type %s", field, unmatchedTypeError.Type.String()), err)
	}

	// final fallback if the error could not be deciphered
	return apperr.Wrap(apperr.KindInvalidInput, "", err)
}

// pathID reads a positive integer path parameter.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)

	if err != nil || id <= 0 {
		RespondKind(ctx, apperr.KindInvalidInput, name+" must be a positive integer")
		return 0, false
	}

	return id, true
}
