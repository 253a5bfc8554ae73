package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "tournament-engine"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// Reasons are checked before categories, most specific first.
var errorReasons = []struct {
	err    error
	reason string
}{
	{usecase.ErrSelfElimination, "selfElimination"},
	{usecase.ErrPlayerNotEnrolled, "playerNotEnrolled"},
	{usecase.ErrKillerNotEnrolled, "killerNotEnrolled"},
	{usecase.ErrEliminatorNotEnrolled, "eliminatorNotEnrolled"},
	{usecase.ErrBustWrongTournament, "bustWrongTournament"},
	{usecase.ErrTournamentNotFound, "tournamentNotFound"},
	{usecase.ErrSeasonNotFound, "seasonNotFound"},
	{usecase.ErrBustNotFound, "bustNotFound"},
	{usecase.ErrTournamentNotInProgress, "tournamentNotInProgress"},
	{usecase.ErrTournamentFinished, "tournamentFinished"},
	{usecase.ErrTournamentNotFinished, "tournamentNotFinished"},
	{usecase.ErrInvalidTransition, "invalidTransition"},
	{usecase.ErrEnrollmentClosed, "enrollmentClosed"},
	{usecase.ErrPlayerAlreadyEnrolled, "playerAlreadyEnrolled"},
	{usecase.ErrNotEnoughPlayers, "notEnoughPlayers"},
	{usecase.ErrRebuyWindowClosed, "rebuyWindowClosed"},
	{usecase.ErrPlayerAlreadyEliminated, "playerAlreadyEliminated"},
	{usecase.ErrEliminatorAlreadyEliminated, "eliminatorAlreadyEliminated"},
	{usecase.ErrKillerAlreadyEliminated, "killerAlreadyEliminated"},
	{usecase.ErrBustPendingDecision, "bustPendingDecision"},
	{usecase.ErrBustSuperseded, "bustSuperseded"},
	{usecase.ErrRecaveAlreadyApplied, "recaveAlreadyApplied"},
	{usecase.ErrRecaveNotApplied, "recaveNotApplied"},
	{usecase.ErrRebuyLimitReached, "rebuyLimitReached"},
	{usecase.ErrLightRebuyUsed, "lightRebuyUsed"},
	{usecase.ErrTimerNotStarted, "timerNotStarted"},
	{usecase.ErrNoActivePlayers, "noActivePlayers"},
	{usecase.ErrAssignmentsExist, "assignmentsExist"},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	message := err.Error()
	if mapped.HTTPStatus == http.StatusInternalServerError && mapped.Status == "INTERNAL" {
		message = "internal server error"
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, errors.New("internal server error"))
}

func mapError(err error) mappedError {
	mapped := mapCategory(err)
	for _, item := range errorReasons {
		if errors.Is(err, item.err) {
			mapped.Reason = item.reason
			break
		}
	}
	return mapped
}

func mapCategory(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrConcurrencyConflict):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "concurrencyConflict", Status: "ABORTED"}
	case errors.Is(err, usecase.ErrStateConflict):
		return mappedError{HTTPStatus: http.StatusConflict, Reason: "stateConflict", Status: "FAILED_PRECONDITION"}
	case errors.Is(err, usecase.ErrIntegrityViolation):
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "integrityViolation", Status: "DATA_LOSS"}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case errors.Is(err, usecase.ErrForbidden):
		return mappedError{HTTPStatus: http.StatusForbidden, Reason: "forbidden", Status: "PERMISSION_DENIED"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	}
}
