package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

func (h *Handler) GenerateTables(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateTables")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	var req generateTablesRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	layout, err := h.tables.GenerateTables(ctx, usecase.GenerateTablesInput{
		TournamentID:  tournamentID,
		SeatsPerTable: req.SeatsPerTable,
		Seed:          req.Seed,
	})
	if err != nil {
		h.fail(ctx, w, "generate tables failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, tableLayoutToDTO(layout))
}

func (h *Handler) RebalanceTables(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RebalanceTables")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	var req rebalanceTablesRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	layout, err := h.tables.RebalanceTables(ctx, usecase.RebalanceTablesInput{
		TournamentID:      tournamentID,
		SeatsPerTable:     req.SeatsPerTable,
		MinPlayersToBreak: req.MinPlayersToBreak,
		Seed:              req.Seed,
	})
	if err != nil {
		h.fail(ctx, w, "rebalance tables failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tableLayoutToDTO(layout))
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTables")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	layout, err := h.tables.ListTables(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "list tables failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tableLayoutToDTO(layout))
}
