package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-engine/internal/domain/payout"
	"github.com/riskibarqy/tournament-engine/internal/domain/scoring"
	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	qb "github.com/riskibarqy/tournament-engine/internal/platform/querybuilder"
)

const seasonsTable = "seasons"

type seasonTableModel struct {
	PublicID  string    `db:"public_id"`
	Name      string    `db:"name"`
	Scoring   string    `db:"scoring"`
	Payouts   *string   `db:"payouts"`
	CreatedAt time.Time `db:"created_at"`
}

var seasonColumns = qb.Columns(seasonTableModel{})

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	scoringJSON, err := sonic.MarshalString(s.Scoring)
	if err != nil {
		return fmt.Errorf("encode season scoring: %w", err)
	}
	model := seasonTableModel{
		PublicID:  s.ID,
		Name:      s.Name,
		Scoring:   scoringJSON,
		CreatedAt: s.CreatedAt,
	}
	if s.Payouts != nil {
		payoutsJSON, err := sonic.MarshalString(s.Payouts)
		if err != nil {
			return fmt.Errorf("encode season payouts: %w", err)
		}
		model.Payouts = &payoutsJSON
	}

	query, args, err := qb.InsertModel(seasonsTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert season "+s.ID)
	}
	return nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select(seasonColumns...).From(seasonsTable).
		Where(qb.Eq("public_id", seasonID)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season %s: %w", seasonID, err)
	}

	item, err := row.toDomain()
	if err != nil {
		return season.Season{}, false, err
	}
	return item, true, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select(seasonColumns...).From(seasonsTable).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (m seasonTableModel) toDomain() (season.Season, error) {
	var cfg scoring.Config
	if err := sonic.UnmarshalString(m.Scoring, &cfg); err != nil {
		return season.Season{}, fmt.Errorf("decode season scoring season=%s: %w", m.PublicID, err)
	}
	out := season.Season{
		ID:        m.PublicID,
		Name:      m.Name,
		Scoring:   cfg,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.Payouts != nil {
		var table payout.Paytable
		if err := sonic.UnmarshalString(*m.Payouts, &table); err != nil {
			return season.Season{}, fmt.Errorf("decode season payouts season=%s: %w", m.PublicID, err)
		}
		out.Payouts = &table
	}
	return out, nil
}
