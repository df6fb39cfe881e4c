package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("identity_id", "record").
		From("player_records").
		Where(Eq("run_id", "r1"), Expr("needs_review = ?", true)).
		OrderBy("identity_id").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT identity_id, record FROM player_records WHERE run_id = $1 AND needs_review = $2 ORDER BY identity_id LIMIT 50"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "r1" || args[1] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("enrichment_results").
		Columns("player_key", "source").
		Values("john_smith", "wikipedia").
		Suffix("ON CONFLICT (player_key, source) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO enrichment_results (player_key, source) VALUES ($1, $2) ON CONFLICT (player_key, source) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		Key    string `db:"player_key"`
		Source string `db:"source"`
		Skip   string `db:"-"`
	}

	query, args, err := InsertModel("enrichment_results", row{Key: "k", Source: "s", Skip: "x"}, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO enrichment_results (player_key, source) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "k" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInBuilder(t *testing.T) {
	query, args, err := Select("identity_id").
		From("player_records").
		Where(In("team_id", []any{"MAD", "PAO"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT identity_id FROM player_records WHERE team_id IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, _, err = Select("identity_id").From("player_records").Where(In("team_id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if want := "SELECT identity_id FROM player_records WHERE 1=0"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
}
