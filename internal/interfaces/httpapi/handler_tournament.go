package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

func (h *Handler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTournament")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTournamentRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.CreateTournament(ctx, req.toInput(principal.UserID))
	if err != nil {
		h.fail(ctx, w, "create tournament failed", err, "season_id", req.SeasonID, "user_id", principal.UserID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tournamentToDTO(item))
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	item, err := h.tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "get tournament failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.tournaments.ListTournaments(ctx)
	if err != nil {
		h.fail(ctx, w, "list tournaments failed", err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, tournamentToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) OpenRegistration(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.OpenRegistration", h.tournaments.OpenRegistration)
}

func (h *Handler) StartTournament(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.StartTournament", h.tournaments.StartTournament)
}

func (h *Handler) CancelTournament(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "httpapi.Handler.CancelTournament", h.tournaments.CancelTournament)
}

func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	op func(ctx context.Context, tournamentID string) (tournament.Tournament, error),
) {
	ctx, span := startSpan(r.Context(), spanName)
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	item, err := op(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "tournament transition failed", err, "tournament_id", tournamentID, "operation", spanName)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentToDTO(item))
}

func (h *Handler) EnrollPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EnrollPlayer")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	var req enrollPlayerRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.tournaments.EnrollPlayer(ctx, usecase.EnrollPlayerInput{
		TournamentID: tournamentID,
		PlayerID:     req.PlayerID,
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		h.fail(ctx, w, "enroll player failed", err, "tournament_id", tournamentID, "player_id", req.PlayerID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(item))
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	items, err := h.tournaments.ListPlayers(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "list players failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(items))
}
