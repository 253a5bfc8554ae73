package querybuilder

import "testing"

func TestSelectBuilder_ForUpdate(t *testing.T) {
	query, args, err := Select("id", "status").
		From("tournaments").
		Where(Eq("id", "t1"), Expr("version = ? AND status <> ?", int64(2), "CANCELLED")).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, status FROM tournaments WHERE id = $1 AND version = $2 AND status <> $3 ORDER BY id FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "t1" || args[1] != int64(2) || args[2] != "CANCELLED" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("busts").
		Columns("id", "level").
		Values("b1", 3).
		Values("b2", 4).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO busts (id, level) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "b1" || args[3] != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type playerRow struct {
	ID      string `db:"id"`
	State   string `db:"state"`
	Version int64  `db:"version"`
	note    string
}

func TestUpdateModel_KeysAndGuards(t *testing.T) {
	row := playerRow{ID: "p1", State: "BUSTED", Version: 4, note: "ignored"}
	query, args, err := UpdateModel("tournament_players", row, []string{"id"}, Expr("version = ?", int64(3)))
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE tournament_players SET state = $1, version = $2 WHERE id = $3 AND version = $4"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "BUSTED" || args[2] != "p1" || args[3] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel_MissingKey(t *testing.T) {
	if _, _, err := UpdateModel("tournament_players", playerRow{}, []string{"tournament_id"}); err == nil {
		t.Fatalf("expected error for missing key column")
	}
}

func TestColumns(t *testing.T) {
	cols := Columns(playerRow{})
	if len(cols) != 3 || cols[0] != "id" || cols[2] != "version" {
		t.Fatalf("unexpected columns: %v", cols)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	if _, _, err := InsertInto("busts").Columns("id", "level").Values("b1").ToSQL(); err == nil {
		t.Fatalf("expected error for short row")
	}
}
