package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

func (h *Handler) RecordBust(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordBust")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	var req recordBustRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	bust, err := h.ledger.RecordBust(ctx, usecase.RecordBustInput{
		TournamentID:       tournamentID,
		EliminatedPlayerID: req.EliminatedPlayerID,
		KillerPlayerID:     req.KillerPlayerID,
	})
	if err != nil {
		h.fail(ctx, w, "record bust failed", err,
			"tournament_id", tournamentID,
			"eliminated_player_id", req.EliminatedPlayerID,
			"killer_player_id", req.KillerPlayerID,
		)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bustToDTO(bust))
}

func (h *Handler) ListBusts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListBusts")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	items, err := h.tournaments.ListBusts(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "list busts failed", err, "tournament_id", tournamentID)
		return
	}

	out := make([]bustDTO, 0, len(items))
	for _, item := range items {
		out = append(out, bustToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ApplyRecave(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApplyRecave")
	defer span.End()

	var req recaveRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.RecaveInput{
		TournamentID: pathID(r, "tournamentID"),
		BustID:       pathID(r, "bustID"),
		Light:        req.Light,
	}
	result, err := h.ledger.ApplyRecave(ctx, input)
	if err != nil {
		h.fail(ctx, w, "apply recave failed", err, "tournament_id", input.TournamentID, "bust_id", input.BustID, "light", input.Light)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recaveResultDTO{Bust: bustToDTO(result.Bust), Player: playerToDTO(result.Player)})
}

func (h *Handler) CancelRecave(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelRecave")
	defer span.End()

	input := usecase.RecaveInput{
		TournamentID: pathID(r, "tournamentID"),
		BustID:       pathID(r, "bustID"),
	}
	result, err := h.ledger.CancelRecave(ctx, input)
	if err != nil {
		h.fail(ctx, w, "cancel recave failed", err, "tournament_id", input.TournamentID, "bust_id", input.BustID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recaveResultDTO{Bust: bustToDTO(result.Bust), Player: playerToDTO(result.Player)})
}

func (h *Handler) RecordElimination(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordElimination")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	var req recordEliminationRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ledger.RecordElimination(ctx, usecase.RecordEliminationInput{
		TournamentID:       tournamentID,
		EliminatedPlayerID: req.EliminatedPlayerID,
		EliminatorPlayerID: req.EliminatorPlayerID,
	})
	if err != nil {
		h.fail(ctx, w, "record elimination failed", err,
			"tournament_id", tournamentID,
			"eliminated_player_id", req.EliminatedPlayerID,
			"eliminator_player_id", req.EliminatorPlayerID,
		)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eliminationResultDTO{
		Elimination:         eliminationToDTO(result.Elimination),
		TournamentCompleted: result.TournamentCompleted,
		RemainingPlayers:    result.RemainingPlayers,
	})
}

func (h *Handler) ListEliminations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEliminations")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	items, err := h.tournaments.ListEliminations(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "list eliminations failed", err, "tournament_id", tournamentID)
		return
	}

	out := make([]eliminationDTO, 0, len(items))
	for _, item := range items {
		out = append(out, eliminationToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
