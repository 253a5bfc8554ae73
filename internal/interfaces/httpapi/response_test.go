package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	errorObj, _ := body["error"].(map[string]any)
	if got, _ := errorObj["message"].(string); got != "internal server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		reason string
	}{
		{name: "validation", err: fmt.Errorf("%w: bad", usecase.ErrInvalidInput), status: 400, code: "INVALID_ARGUMENT", reason: "invalidInput"},
		{name: "self elimination", err: fmt.Errorf("%w: player=p1", usecase.ErrSelfElimination), status: 400, code: "INVALID_ARGUMENT", reason: "selfElimination"},
		{name: "not found", err: usecase.ErrBustNotFound, status: 404, code: "NOT_FOUND", reason: "bustNotFound"},
		{name: "window closed", err: fmt.Errorf("%w: level=7", usecase.ErrRebuyWindowClosed), status: 409, code: "FAILED_PRECONDITION", reason: "rebuyWindowClosed"},
		{name: "concurrency", err: fmt.Errorf("%w: lost race", usecase.ErrConcurrencyConflict), status: 409, code: "ABORTED", reason: "concurrencyConflict"},
		{name: "integrity", err: usecase.ErrIntegrityViolation, status: 500, code: "DATA_LOSS", reason: "integrityViolation"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, status: 401, code: "UNAUTHENTICATED", reason: "unauthorized"},
		{name: "forbidden", err: usecase.ErrForbidden, status: 403, code: "PERMISSION_DENIED", reason: "forbidden"},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, status: 503, code: "UNAVAILABLE", reason: "dependencyUnavailable"},
		{name: "unknown", err: errors.New("boom"), status: 500, code: "INTERNAL", reason: "internalError"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.err)
			if got.HTTPStatus != tc.status || got.Status != tc.code || got.Reason != tc.reason {
				t.Fatalf("mapError(%v) = %+v", tc.err, got)
			}
		})
	}
}
