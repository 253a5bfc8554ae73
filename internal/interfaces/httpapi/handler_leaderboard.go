package httpapi

import (
	"net/http"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	board, err := h.boards.GetLiveLeaderboard(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "get leaderboard failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetResults")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	board, err := h.boards.GetFinalResults(ctx, tournamentID)
	if err != nil {
		h.fail(ctx, w, "get results failed", err, "tournament_id", tournamentID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(board))
}

// Live upgrades to a websocket that receives every committed event of the tournament.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Live")
	defer span.End()

	tournamentID := pathID(r, "tournamentID")
	if _, err := h.tournaments.GetTournament(ctx, tournamentID); err != nil {
		h.fail(ctx, w, "live subscription failed", err, "tournament_id", tournamentID)
		return
	}
	if h.live == nil {
		writeInternalError(ctx, w)
		return
	}
	if err := h.live.ServeWS(w, r, tournamentID); err != nil {
		// The upgrader already replied to the client.
		h.logger.WarnContext(ctx, "websocket upgrade failed", "tournament_id", tournamentID, "error", err)
	}
}
