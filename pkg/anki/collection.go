package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	_ "modernc.org/sqlite" // Register the sqlite driver.

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/log"
)

const (
	// fieldSeparator separates note field values.
	fieldSeparator = "\x1f"
	// deckSeparator separates nested deck names in the modern schema.
	deckSeparator = "\x1f"
)

// ErrSchema is returned when the database is not an Anki collection.
var ErrSchema = errors.New("unsupported collection schema")

// Compile-time interface checks.
var (
	_ card.Source      = (*Collection)(nil)
	_ card.Card        = (*Card)(nil)
	_ card.Note        = (*Note)(nil)
	_ card.SortFielder = (*Note)(nil)
)

type noteType struct {
	Name   string
	Fields []string
	Sort   int
}

// Collection is a read-only view of an Anki collection.
type Collection struct {
	db        *sql.DB
	tracer    trace.Tracer
	decks     map[int64]string
	noteTypes map[int64]noteType
	modern    bool
}

// Open opens the collection file at path read-only.
func Open(ctx context.Context, path string) (*Collection, error) {
	dsn := "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	c, err := New(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// New reads deck and note type metadata from db, which must hold an Anki
// collection. Closing the [Collection] closes db.
func New(ctx context.Context, db *sql.DB) (*Collection, error) {
	c := &Collection{
		db:     db,
		tracer: otel.Tracer("anki"),
	}

	ctx, span := c.tracer.Start(ctx, "load collection")
	defer span.End()

	modern, err := c.hasTable(ctx, "notetypes")
	if err != nil {
		return nil, err
	}

	c.modern = modern
	span.SetAttributes(attribute.Bool("modern", modern))

	if modern {
		err = c.loadModern(ctx)
	} else {
		err = c.loadLegacy(ctx)
	}

	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	log.WithContext(ctx).DebugContext(ctx, "opened collection",
		slog.Bool("modern", modern),
		slog.Int("decks", len(c.decks)),
		slog.Int("note_types", len(c.noteTypes)),
	)

	return c, nil
}

// Close closes the database.
func (c *Collection) Close() error {
	err := c.db.Close()
	if err != nil {
		return fmt.Errorf("close collection: %w", err)
	}

	return nil
}

func (c *Collection) hasTable(ctx context.Context, name string) (bool, error) {
	var n int

	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}

	return n > 0, nil
}

func (c *Collection) loadLegacy(ctx context.Context) error {
	var models, decks string

	err := c.db.QueryRowContext(ctx, "SELECT models, decks FROM col").Scan(&models, &decks)
	if err != nil {
		return fmt.Errorf("%w: read col: %w", ErrSchema, err)
	}

	var rawModels map[string]struct {
		Name   string `json:"name"`
		Fields []struct {
			Name string `json:"name"`
			Ord  int    `json:"ord"`
		} `json:"flds"`
		Sort int `json:"sortf"`
	}

	err = json.Unmarshal([]byte(models), &rawModels)
	if err != nil {
		return fmt.Errorf("%w: decode note types: %w", ErrSchema, err)
	}

	c.noteTypes = make(map[int64]noteType, len(rawModels))

	for id, m := range rawModels {
		mid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: note type id %q: %w", ErrSchema, id, err)
		}

		fields := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			if f.Ord >= 0 && f.Ord < len(fields) {
				fields[f.Ord] = f.Name
			} else {
				fields[i] = f.Name
			}
		}

		c.noteTypes[mid] = noteType{Name: m.Name, Fields: fields, Sort: m.Sort}
	}

	var rawDecks map[string]struct {
		Name string `json:"name"`
	}

	err = json.Unmarshal([]byte(decks), &rawDecks)
	if err != nil {
		return fmt.Errorf("%w: decode decks: %w", ErrSchema, err)
	}

	c.decks = make(map[int64]string, len(rawDecks))

	for id, d := range rawDecks {
		did, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: deck id %q: %w", ErrSchema, id, err)
		}

		c.decks[did] = d.Name
	}

	return nil
}

func (c *Collection) loadModern(ctx context.Context) error {
	c.decks = map[int64]string{}

	rows, err := c.db.QueryContext(ctx, "SELECT id, name FROM decks")
	if err != nil {
		return fmt.Errorf("%w: read decks: %w", ErrSchema, err)
	}

	for rows.Next() {
		var (
			id   int64
			name string
		)

		err = rows.Scan(&id, &name)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan deck: %w", err)
		}

		c.decks[id] = strings.ReplaceAll(name, deckSeparator, "::")
	}

	err = closeRows(rows)
	if err != nil {
		return fmt.Errorf("read decks: %w", err)
	}

	c.noteTypes = map[int64]noteType{}

	rows, err = c.db.QueryContext(ctx, "SELECT id, name FROM notetypes")
	if err != nil {
		return fmt.Errorf("%w: read note types: %w", ErrSchema, err)
	}

	for rows.Next() {
		var (
			id   int64
			name string
		)

		err = rows.Scan(&id, &name)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan note type: %w", err)
		}

		c.noteTypes[id] = noteType{Name: name, Sort: -1}
	}

	err = closeRows(rows)
	if err != nil {
		return fmt.Errorf("read note types: %w", err)
	}

	rows, err = c.db.QueryContext(ctx, "SELECT ntid, name FROM fields ORDER BY ntid, ord")
	if err != nil {
		return fmt.Errorf("%w: read fields: %w", ErrSchema, err)
	}

	for rows.Next() {
		var (
			ntid int64
			name string
		)

		err = rows.Scan(&ntid, &name)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan field: %w", err)
		}

		nt := c.noteTypes[ntid]
		nt.Fields = append(nt.Fields, name)
		c.noteTypes[ntid] = nt
	}

	return closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if err != nil {
		_ = rows.Close()
		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	return rows.Close() //nolint:wrapcheck // Wrapped by the caller.
}

// CardIDs returns every card id in ascending order.
func (c *Collection) CardIDs(ctx context.Context) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM cards ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	var ids []int64

	for rows.Next() {
		var id int64

		err = rows.Scan(&id)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan card id: %w", err)
		}

		ids = append(ids, id)
	}

	err = closeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	return ids, nil
}

// Card loads a card with its note and review history.
//
//nolint:ireturn // Implements card.Source.
func (c *Collection) Card(ctx context.Context, id int64) (card.Card, error) {
	ctx, span := c.tracer.Start(ctx, "load card", trace.WithAttributes(
		attribute.Int64("card", id),
	))
	defer span.End()

	out := &Card{id: id, decks: c.decks}

	var (
		nid   int64
		queue int
	)

	err := c.db.QueryRowContext(ctx,
		"SELECT nid, did, odid, queue, reps FROM cards WHERE id = ?", id,
	).Scan(&nid, &out.did, &out.odid, &queue, &out.reps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", card.ErrNotFound, id)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read card %d: %w", id, err)
	}

	out.queue = card.Queue(queue)

	out.note, err = c.note(ctx, nid)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out.eases, err = c.eases(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return out, nil
}

func (c *Collection) note(ctx context.Context, nid int64) (*Note, error) {
	var (
		mid  int64
		tags string
		flds string
		sfld any
	)

	err := c.db.QueryRowContext(ctx,
		"SELECT mid, tags, flds, sfld FROM notes WHERE id = ?", nid,
	).Scan(&mid, &tags, &flds, &sfld)
	if err != nil {
		return nil, fmt.Errorf("read note %d: %w", nid, err)
	}

	nt, ok := c.noteTypes[mid]
	if !ok {
		return nil, fmt.Errorf("note %d: unknown note type %d", nid, mid)
	}

	values := strings.Split(flds, fieldSeparator)
	n := &Note{
		noteType: nt.Name,
		tags:     strings.Fields(tags),
		fields:   make([]card.Field, 0, len(values)),
		sort:     nt.Sort,
	}

	for i, v := range values {
		name := ""
		if i < len(nt.Fields) {
			name = nt.Fields[i]
		}

		n.fields = append(n.fields, card.Field{Name: name, Value: v})
	}

	if n.sort < 0 {
		n.sort = sortIndex(n.fields, sortText(sfld))
	}

	return n, nil
}

// sortText converts the sfld column, which may hold text or an integer.
func sortText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	case string:
		return v
	}

	return fmt.Sprint(v)
}

// sortIndex guesses the sort field of a note whose note type does not record
// it, by finding the field whose value equals the stored sort text.
func sortIndex(fields []card.Field, sortText string) int {
	for i, f := range fields {
		if f.Value == sortText {
			return i
		}
	}

	return 0
}

func (c *Collection) eases(ctx context.Context, cid int64) ([]int, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT ease FROM revlog WHERE cid = ? ORDER BY id", cid)
	if err != nil {
		return nil, fmt.Errorf("read review log: %w", err)
	}

	var eases []int

	for rows.Next() {
		var ease int

		err = rows.Scan(&ease)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan review: %w", err)
		}

		eases = append(eases, ease)
	}

	err = closeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("read review log: %w", err)
	}

	return eases, nil
}
