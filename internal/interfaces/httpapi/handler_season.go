package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
)

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	var req createSeasonRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.seasons.CreateSeason(ctx, req.toInput())
	if err != nil {
		h.fail(ctx, w, "create season failed", err, "name", req.Name)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(item))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	seasonID := pathID(r, "seasonID")
	item, err := h.seasons.GetSeason(ctx, seasonID)
	if err != nil {
		h.fail(ctx, w, "get season failed", err, "season_id", seasonID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(item))
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	items, err := h.seasons.ListSeasons(ctx)
	if err != nil {
		h.fail(ctx, w, "list seasons failed", err)
		return
	}

	out := make([]seasonDTO, 0, len(items))
	for _, item := range items {
		out = append(out, seasonToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// PreviewSchedule generates a blind schedule without persisting anything.
func (h *Handler) PreviewSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewSchedule")
	defer span.End()

	var req generateScheduleRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	schedule, err := blinds.Generate(req.toInput())
	if err != nil {
		h.fail(ctx, w, "preview schedule failed", invalidInput(err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, schedulePreviewToDTO(schedule))
}
