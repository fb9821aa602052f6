package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/pysugar/surfvault/internal/auth/token"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/upstream"
	"github.com/pysugar/surfvault/internal/wire"
	"github.com/pysugar/surfvault/internal/workflow"
)

// Text codes carried in error envelopes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeValidation       = "VALIDATION_FAILED"
	CodeBadRequest       = "BAD_REQUEST"
	CodeDeserialize      = "DESERIALIZE_FAILED"
	CodeSerialize        = "SERIALIZE_FAILED"
	CodeIO               = "IO_FAILED"
	CodeAuthFailed       = "AUTH_FAILED"
	CodeRetriesExhausted = "RETRIES_EXHAUSTED"
	CodeTransferStep     = "TRANSFER_STEP_FAILED"
	CodeUpstream         = "UPSTREAM_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeInvalidTimestamp = "INVALID_TIMESTAMP"
	CodeUnknownQuery     = "UNKNOWN_QUERY"

	maxRequestBodyBytes = 1 << 20
)

func badRequest(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(CodeBadRequest)
}

// toServiceError maps domain errors onto an HTTP error envelope.
func toServiceError(err error) *goerrors.Error {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	var (
		category goerrors.Category
		status   int
		code     string
	)
	var apiErr *upstream.APIError
	var stepErr *workflow.StepError
	switch {
	case errors.Is(err, store.ErrNotFound):
		category, status, code = goerrors.CategoryNotFound, http.StatusNotFound, CodeNotFound
	case errors.Is(err, store.ErrDuplicateName):
		category, status, code = goerrors.CategoryConflict, http.StatusConflict, CodeDuplicateName
	case errors.Is(err, store.ErrValidation):
		category, status, code = goerrors.CategoryValidation, http.StatusBadRequest, CodeValidation
	case errors.Is(err, wire.ErrInvalidTimestamp):
		category, status, code = goerrors.CategoryValidation, http.StatusBadRequest, CodeInvalidTimestamp
	case errors.Is(err, wire.ErrUnknownQuery):
		category, status, code = goerrors.CategoryValidation, http.StatusBadRequest, CodeUnknownQuery
	case errors.Is(err, store.ErrDeserialize):
		category, status, code = goerrors.CategoryBadInput, http.StatusUnprocessableEntity, CodeDeserialize
	case errors.Is(err, store.ErrSerialize):
		category, status, code = goerrors.CategoryInternal, http.StatusInternalServerError, CodeSerialize
	case errors.Is(err, store.ErrIO):
		category, status, code = goerrors.CategoryInternal, http.StatusInternalServerError, CodeIO
	case errors.Is(err, token.ErrRetriesExhausted):
		category, status, code = goerrors.CategoryAuth, http.StatusUnauthorized, CodeRetriesExhausted
	case errors.Is(err, token.ErrAuthFailed):
		category, status, code = goerrors.CategoryAuth, http.StatusUnauthorized, CodeAuthFailed
	case errors.As(err, &stepErr):
		category, status, code = goerrors.CategoryOperation, http.StatusBadGateway, CodeTransferStep
	case errors.As(err, &apiErr):
		category, status, code = goerrors.CategoryOperation, http.StatusBadGateway, CodeUpstream
	default:
		category, status, code = goerrors.CategoryInternal, http.StatusInternalServerError, CodeInternal
	}
	return goerrors.Wrap(err, category, err.Error()).
		WithCode(status).
		WithTextCode(code)
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Category string `json:"category"`
	Code     int    `json:"code"`
	TextCode string `json:"text_code"`
	Message  string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	rich := toServiceError(err)
	status := rich.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Category: string(rich.Category),
		Code:     status,
		TextCode: rich.TextCode,
		Message:  rich.Message,
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}
