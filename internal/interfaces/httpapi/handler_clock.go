package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

func (h *Handler) GetClock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetClock")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	state, err := h.clocks.GetClock(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "get clock failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clockToDTO(state))
}

func (h *Handler) TimerAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TimerAction")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	action := pathID(r, "action")

	var op func(context.Context, string) (usecase.ClockState, error)
	switch action {
	case "start":
		op = h.clocks.StartTimer
	case "pause":
		op = h.clocks.PauseTimer
	case "resume":
		op = h.clocks.ResumeTimer
	case "reset":
		op = h.clocks.ResetTimer
	default:
		writeError(ctx, w, fmt.Errorf("%w: unknown timer action %q", usecase.ErrInvalidInput, action))
		return
	}

	state, err := op(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "timer action failed", err, "tournament_id", tournamentID, "action", action)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clockToDTO(state))
}
