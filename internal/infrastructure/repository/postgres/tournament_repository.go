package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	qb "github.com/riskibarqy/tournament-engine/internal/platform/querybuilder"
)

var (
	tournamentColumns  = qb.Columns(tournamentTableModel{})
	playerColumns      = qb.Columns(playerTableModel{})
	bustColumns        = qb.Columns(bustTableModel{})
	eliminationColumns = qb.Columns(eliminationTableModel{})
	assignmentColumns  = qb.Columns(assignmentTableModel{})
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) CreateTournament(ctx context.Context, t tournament.Tournament) error {
	model, err := toTournamentModel(t)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel(tournamentsTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert tournament query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert tournament")
	}
	return nil
}

func (r *TournamentRepository) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return getTournament(ctx, r.db, tournamentID, false)
}

func (r *TournamentRepository) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).From(tournamentsTable).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *TournamentRepository) ListPlayers(ctx context.Context, tournamentID string) ([]tournament.Player, error) {
	return listPlayers(ctx, r.db, tournamentID)
}

func (r *TournamentRepository) ListEliminations(ctx context.Context, tournamentID string) ([]tournament.Elimination, error) {
	query, args, err := qb.Select(eliminationColumns...).From(eliminationsTable).
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select eliminations query: %w", err)
	}

	var rows []eliminationTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select eliminations tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.Elimination, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TournamentRepository) ListBusts(ctx context.Context, tournamentID string) ([]tournament.Bust, error) {
	return listBusts(ctx, r.db, tournamentID)
}

func (r *TournamentRepository) ListActiveAssignments(ctx context.Context, tournamentID string) ([]tournament.TableAssignment, error) {
	return listActiveAssignments(ctx, r.db, tournamentID)
}

// WithinTx runs fn in a READ COMMITTED transaction. Mutations are serialized per tournament by
// the row lock LockTournament takes.
func (r *TournamentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx tournament.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tournament tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &tournamentTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return mapWriteError(err, "commit tournament tx")
	}
	return nil
}

type tournamentTx struct {
	tx *sqlx.Tx
}

func (t *tournamentTx) LockTournament(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return getTournament(ctx, t.tx, tournamentID, true)
}

func (t *tournamentTx) UpdateTournament(ctx context.Context, item tournament.Tournament) error {
	model, err := toTournamentModel(item)
	if err != nil {
		return err
	}
	model.Version = item.Version + 1

	query, args, err := qb.UpdateModel(tournamentsTable, model, []string{"public_id"}, qb.Eq("version", item.Version))
	if err != nil {
		return fmt.Errorf("build update tournament query: %w", err)
	}
	return execGuarded(ctx, t.tx, query, args, "update tournament "+item.ID)
}

func (t *tournamentTx) ListPlayers(ctx context.Context, tournamentID string) ([]tournament.Player, error) {
	return listPlayers(ctx, t.tx, tournamentID)
}

func (t *tournamentTx) InsertPlayer(ctx context.Context, p tournament.Player) error {
	query, args, err := qb.InsertModel(playersTable, toPlayerModel(p), "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert player "+p.PlayerID)
	}
	return nil
}

func (t *tournamentTx) UpdatePlayer(ctx context.Context, p tournament.Player) error {
	model := toPlayerModel(p)
	model.Version = p.Version + 1

	query, args, err := qb.UpdateModel(playersTable, model, []string{"public_id"}, qb.Eq("version", p.Version))
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}
	return execGuarded(ctx, t.tx, query, args, "update player "+p.PlayerID)
}

func (t *tournamentTx) GetBust(ctx context.Context, bustID string) (tournament.Bust, bool, error) {
	query, args, err := qb.Select(bustColumns...).From(bustsTable).
		Where(qb.Eq("public_id", bustID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return tournament.Bust{}, false, fmt.Errorf("build select bust query: %w", err)
	}

	var row bustTableModel
	if err := sqlx.GetContext(ctx, t.tx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Bust{}, false, nil
		}
		return tournament.Bust{}, false, fmt.Errorf("get bust %s: %w", bustID, err)
	}
	return row.toDomain(), true, nil
}

func (t *tournamentTx) ListBusts(ctx context.Context, tournamentID string) ([]tournament.Bust, error) {
	return listBusts(ctx, t.tx, tournamentID)
}

func (t *tournamentTx) InsertBust(ctx context.Context, b tournament.Bust) error {
	query, args, err := qb.InsertModel(bustsTable, toBustModel(b), "")
	if err != nil {
		return fmt.Errorf("build insert bust query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert bust "+b.ID)
	}
	return nil
}

func (t *tournamentTx) UpdateBust(ctx context.Context, b tournament.Bust) error {
	query, args, err := qb.Update(bustsTable).
		Set("recave_applied", b.RecaveApplied).
		Set("recave_light", b.RecaveLight).
		Set("updated_at", b.UpdatedAt).
		Where(
			qb.Eq("public_id", b.ID),
			qb.Eq("tournament_public_id", b.TournamentID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update bust query: %w", err)
	}
	return execGuarded(ctx, t.tx, query, args, "update bust "+b.ID)
}

func (t *tournamentTx) InsertElimination(ctx context.Context, e tournament.Elimination) error {
	model := eliminationTableModel{
		PublicID:           e.ID,
		TournamentID:       e.TournamentID,
		EliminatedPlayerID: e.EliminatedPlayerID,
		EliminatorPlayerID: e.EliminatorPlayerID,
		Rank:               e.Rank,
		Level:              e.Level,
		IsLeaderKill:       e.IsLeaderKill,
		CreatedAt:          e.CreatedAt,
	}
	query, args, err := qb.InsertModel(eliminationsTable, model, "")
	if err != nil {
		return fmt.Errorf("build insert elimination query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert elimination "+e.EliminatedPlayerID)
	}
	return nil
}

func (t *tournamentTx) ListActiveAssignments(ctx context.Context, tournamentID string) ([]tournament.TableAssignment, error) {
	return listActiveAssignments(ctx, t.tx, tournamentID)
}

func (t *tournamentTx) ReplaceAssignments(ctx context.Context, tournamentID string, next []tournament.TableAssignment) error {
	deactivate, args, err := qb.Update(assignmentsTable).
		Set("is_active", false).
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Expr("is_active"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate assignments query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, deactivate, args...); err != nil {
		return fmt.Errorf("deactivate assignments tournament=%s: %w", tournamentID, err)
	}
	if len(next) == 0 {
		return nil
	}

	insert := qb.InsertInto(assignmentsTable).Columns(assignmentColumns...)
	for _, a := range next {
		insert.Values(tournamentID, a.PlayerID, a.TableNumber, a.SeatNumber, a.Generation, true, a.CreatedAt)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert assignments query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err, "insert assignments tournament="+tournamentID)
	}
	return nil
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, tournamentID string, lock bool) (tournament.Tournament, bool, error) {
	builder := qb.Select(tournamentColumns...).From(tournamentsTable).
		Where(qb.Eq("public_id", tournamentID))
	if lock {
		builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build select tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament %s: %w", tournamentID, err)
	}

	item, err := row.toDomain()
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return item, true, nil
}

func listPlayers(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]tournament.Player, error) {
	query, args, err := qb.Select(playerColumns...).From(playersTable).
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("enrollment_order").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func listBusts(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]tournament.Bust, error) {
	query, args, err := qb.Select(bustColumns...).From(bustsTable).
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select busts query: %w", err)
	}

	var rows []bustTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select busts tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.Bust, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func listActiveAssignments(ctx context.Context, q sqlx.QueryerContext, tournamentID string) ([]tournament.TableAssignment, error) {
	query, args, err := qb.Select(assignmentColumns...).From(assignmentsTable).
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Expr("is_active"),
		).
		OrderBy("table_number", "seat_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select assignments query: %w", err)
	}

	var rows []assignmentTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select assignments tournament=%s: %w", tournamentID, err)
	}

	out := make([]tournament.TableAssignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// execGuarded runs a write that must touch exactly one row; zero rows means a stale version.
func execGuarded(ctx context.Context, tx *sqlx.Tx, query string, args []any, op string) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return mapWriteError(err, op)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s matched no row", tournament.ErrConcurrentModification, op)
	}
	return nil
}
