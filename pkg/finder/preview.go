package finder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/log"
)

var tracer = otel.Tracer("finder")

// Match is a card that satisfied a [RuleSet] during a [Preview].
type Match struct {
	Deck       string   `json:"deck"`
	NoteType   string   `json:"noteType"`
	SortField  string   `json:"sortField"`
	SortValue  string   `json:"sortValue"`
	Tags       []string `json:"tags"`
	ID         int64    `json:"id"`
	Repetition int      `json:"reps"`
}

// Preview evaluates rs against every card in src and returns the cards that
// match, in id order. Cards that cannot be loaded or evaluated are logged and
// skipped.
func Preview(ctx context.Context, src card.Source, rs *RuleSet) ([]Match, error) {
	ctx, span := tracer.Start(ctx, "preview", trace.WithAttributes(
		attribute.String("panel", rs.Name),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(slog.String("panel", rs.Name))

	ids, err := src.CardIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("list cards: %w", err)
	}

	start := time.Now()
	matches := []Match{}
	skipped := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}

		m, ok, err := previewCard(ctx, src, rs, id)
		if err != nil {
			skipped++

			logger.WarnContext(ctx, "skipping card",
				slog.Int64("card", id),
				slog.Any("err", err),
			)

			continue
		}
		if ok {
			matches = append(matches, m)
		}
	}

	span.SetAttributes(
		attribute.Int("cards", len(ids)),
		attribute.Int("matches", len(matches)),
		attribute.Int("skipped", skipped),
	)

	logger.DebugContext(ctx, "preview complete",
		slog.Int("cards", len(ids)),
		slog.Int("matches", len(matches)),
		slog.Int("skipped", skipped),
		slog.Duration("duration", time.Since(start)),
	)

	return matches, nil
}

func previewCard(ctx context.Context, src card.Source, rs *RuleSet, id int64) (Match, bool, error) {
	c, err := src.Card(ctx, id)
	if err != nil {
		return Match{}, false, fmt.Errorf("load card: %w", err)
	}

	ok, err := rs.Evaluate(c)
	if err != nil || !ok {
		return Match{}, false, err
	}

	n, err := c.Note()
	if err != nil {
		return Match{}, false, fmt.Errorf("note: %w", err)
	}

	deck, err := c.DeckName()
	if err != nil {
		return Match{}, false, fmt.Errorf("deck name: %w", err)
	}

	sf := card.SortField(n)

	return Match{
		ID:         c.ID(),
		Deck:       deck,
		NoteType:   n.NoteType(),
		SortField:  sf.Name,
		SortValue:  StripField(sf.Value),
		Tags:       n.Tags(),
		Repetition: c.Reps(),
	}, true, nil
}
