package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

// LiveStream subscribes a websocket connection to a tournament room.
type LiveStream interface {
	ServeWS(w http.ResponseWriter, r *http.Request, room string) error
}

type Services struct {
	Seasons     *usecase.SeasonService
	Tournaments *usecase.TournamentService
	Clocks      *usecase.ClockService
	Ledger      *usecase.LedgerService
	Tables      *usecase.TableService
	Boards      *usecase.LeaderboardService
}

type Handler struct {
	seasons     *usecase.SeasonService
	tournaments *usecase.TournamentService
	clocks      *usecase.ClockService
	ledger      *usecase.LedgerService
	tables      *usecase.TableService
	boards      *usecase.LeaderboardService
	live        LiveStream
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(services Services, live LiveStream, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasons:     services.Seasons,
		tournaments: services.Tournaments,
		clocks:      services.Clocks,
		ledger:      services.Ledger,
		tables:      services.Tables,
		boards:      services.Boards,
		live:        live,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. With optional set an empty
// body leaves dst at its zero value.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, optional bool) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

func pathID(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// fail writes err, logging rejected preconditions at warn and everything else at error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	writeError(ctx, w, err)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
}
