// Package ankitest builds Anki collection databases for tests.
package ankitest

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // Register the sqlite driver.
)

type Deck struct {
	Name string
	ID   int64
}

type NoteType struct {
	Name   string
	Fields []string
	ID     int64
	Sort   int
}

type Note struct {
	Tags     []string
	Fields   []string
	ID       int64
	NoteType int64
}

type Card struct {
	Eases    []int
	ID       int64
	Note     int64
	Deck     int64
	OrigDeck int64
	Queue    int
}

// Collection describes the contents of a collection database.
type Collection struct {
	Decks     []Deck
	NoteTypes []NoteType
	Notes     []Note
	Cards     []Card
}

// Japanese returns a small collection with Japanese and Spanish cards.
func Japanese() Collection {
	return Collection{
		Decks: []Deck{
			{ID: 1, Name: "Default"},
			{ID: 2, Name: "Japanese::Core"},
			{ID: 3, Name: "Spanish"},
			{ID: 4, Name: "Filtered"},
		},
		NoteTypes: []NoteType{
			{ID: 10, Name: "Japanese (recognition)", Fields: []string{"Expression", "Meaning", "Reading"}},
			{ID: 11, Name: "Basic", Fields: []string{"Front", "Back"}, Sort: 1},
		},
		Notes: []Note{
			{ID: 100, NoteType: 10, Tags: []string{"anime", "n5"}, Fields: []string{"<b>猫</b>だ", "cat", "猫[ねこ]だ"}},
			{ID: 101, NoteType: 11, Tags: []string{"es"}, Fields: []string{"perro", "dog"}},
			{ID: 102, NoteType: 10, Tags: []string{"misc"}, Fields: []string{"日本語", "Japanese", "日本語[にほんご]"}},
		},
		Cards: []Card{
			{ID: 1000, Note: 100, Deck: 2, Queue: 2, Eases: []int{3, 1, 4}},
			{ID: 1001, Note: 101, Deck: 3, Queue: 0},
			{ID: 1002, Note: 102, Deck: 4, OrigDeck: 2, Queue: 1, Eases: []int{1}},
		},
	}
}

// Open creates an in-memory database holding c. The modern schema is used
// when modern is set.
func Open(t *testing.T, c Collection, modern bool) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	Write(t, db, c, modern)

	return db
}

// WriteFile creates a collection file at path holding c.
func WriteFile(t *testing.T, path string, c Collection, modern bool) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	Write(t, db, c, modern)
	require.NoError(t, db.Close())
}

// Write creates the collection tables in db and fills them from c.
func Write(t *testing.T, db *sql.DB, c Collection, modern bool) {
	t.Helper()

	ctx := context.Background()

	stmts := []string{
		`CREATE TABLE col (id integer primary key, crt integer not null, mod integer not null,
			scm integer not null, ver integer not null, dty integer not null, usn integer not null,
			ls integer not null, conf text not null, models text not null, decks text not null,
			dconf text not null, tags text not null)`,
		`CREATE TABLE notes (id integer primary key, guid text not null, mid integer not null,
			mod integer not null, usn integer not null, tags text not null, flds text not null,
			sfld integer not null, csum integer not null, flags integer not null, data text not null)`,
		`CREATE TABLE cards (id integer primary key, nid integer not null, did integer not null,
			ord integer not null, mod integer not null, usn integer not null, type integer not null,
			queue integer not null, due integer not null, ivl integer not null, factor integer not null,
			reps integer not null, lapses integer not null, left integer not null, odue integer not null,
			odid integer not null, flags integer not null, data text not null)`,
		`CREATE TABLE revlog (id integer primary key, cid integer not null, usn integer not null,
			ease integer not null, ivl integer not null, lastIvl integer not null, factor integer not null,
			time integer not null, type integer not null)`,
	}

	if modern {
		stmts = append(stmts,
			`CREATE TABLE notetypes (id integer primary key, name text not null, mtime_secs integer not null,
				usn integer not null, config blob not null)`,
			`CREATE TABLE fields (ntid integer not null, ord integer not null, name text not null,
				config blob not null, primary key (ntid, ord))`,
			`CREATE TABLE decks (id integer primary key, name text not null, mtime_secs integer not null,
				usn integer not null, common blob not null, kind blob not null)`,
		)
	}

	for _, stmt := range stmts {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	if modern {
		writeModernMeta(t, db, c)
	} else {
		writeLegacyMeta(t, db, c)
	}

	sortFields := map[int64]int{}
	for _, nt := range c.NoteTypes {
		sortFields[nt.ID] = nt.Sort
	}

	for _, n := range c.Notes {
		sfld := ""
		if i := sortFields[n.NoteType]; i < len(n.Fields) {
			sfld = n.Fields[i]
		}

		tags := ""
		if len(n.Tags) > 0 {
			tags = " " + strings.Join(n.Tags, " ") + " "
		}

		_, err := db.ExecContext(ctx,
			`INSERT INTO notes VALUES (?, ?, ?, 0, -1, ?, ?, ?, 0, 0, '')`,
			n.ID, strconv.FormatInt(n.ID, 36), n.NoteType, tags, strings.Join(n.Fields, "\x1f"), sfld,
		)
		require.NoError(t, err)
	}

	revID := int64(1)

	for _, cd := range c.Cards {
		_, err := db.ExecContext(ctx,
			`INSERT INTO cards VALUES (?, ?, ?, 0, 0, -1, 0, ?, 0, 0, 2500, ?, 0, 0, 0, ?, 0, '')`,
			cd.ID, cd.Note, cd.Deck, cd.Queue, len(cd.Eases), cd.OrigDeck,
		)
		require.NoError(t, err)

		for _, ease := range cd.Eases {
			_, err := db.ExecContext(ctx,
				`INSERT INTO revlog VALUES (?, ?, -1, ?, 1, 0, 2500, 1000, 1)`,
				revID, cd.ID, ease,
			)
			require.NoError(t, err)

			revID++
		}
	}
}

func writeLegacyMeta(t *testing.T, db *sql.DB, c Collection) {
	t.Helper()

	type field struct {
		Name string `json:"name"`
		Ord  int    `json:"ord"`
	}

	type model struct {
		Name   string  `json:"name"`
		Fields []field `json:"flds"`
		Sort   int     `json:"sortf"`
	}

	models := map[string]model{}
	for _, nt := range c.NoteTypes {
		m := model{Name: nt.Name, Sort: nt.Sort}
		for i, f := range nt.Fields {
			m.Fields = append(m.Fields, field{Name: f, Ord: i})
		}

		models[strconv.FormatInt(nt.ID, 10)] = m
	}

	decks := map[string]map[string]any{}
	for _, d := range c.Decks {
		decks[strconv.FormatInt(d.ID, 10)] = map[string]any{"id": d.ID, "name": d.Name}
	}

	modelsJSON, err := json.Marshal(models)
	require.NoError(t, err)

	decksJSON, err := json.Marshal(decks)
	require.NoError(t, err)

	_, err = db.ExecContext(context.Background(),
		`INSERT INTO col VALUES (1, 0, 0, 0, 11, 0, 0, 0, '{}', ?, ?, '{}', '{}')`,
		string(modelsJSON), string(decksJSON),
	)
	require.NoError(t, err)
}

func writeModernMeta(t *testing.T, db *sql.DB, c Collection) {
	t.Helper()

	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO col VALUES (1, 0, 0, 0, 18, 0, 0, 0, '', '', '', '', '')`)
	require.NoError(t, err)

	for _, d := range c.Decks {
		_, err := db.ExecContext(ctx,
			`INSERT INTO decks VALUES (?, ?, 0, 0, x'', x'')`,
			d.ID, strings.ReplaceAll(d.Name, "::", "\x1f"),
		)
		require.NoError(t, err)
	}

	for _, nt := range c.NoteTypes {
		_, err := db.ExecContext(ctx, `INSERT INTO notetypes VALUES (?, ?, 0, 0, x'')`, nt.ID, nt.Name)
		require.NoError(t, err)

		for i, f := range nt.Fields {
			_, err := db.ExecContext(ctx, `INSERT INTO fields VALUES (?, ?, ?, x'')`, nt.ID, i, f)
			require.NoError(t, err)
		}
	}
}
