package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/cardfont/pkg/card"
	"github.com/macropower/cardfont/pkg/finder"
	"github.com/macropower/cardfont/pkg/log"
	"github.com/macropower/cardfont/pkg/store"
)

var (
	// ErrRegistered is returned when registering a session twice.
	ErrRegistered = errors.New("session already registered")
	// ErrNotRegistered is returned when closing a session that is not
	// registered.
	ErrNotRegistered = errors.New("session not registered")
	// ErrIncomplete is returned by [NewSession] when a required option is
	// missing.
	ErrIncomplete = errors.New("incomplete session")
)

// Transform rewrites the markup of a matching card.
type Transform interface {
	Question(ctx context.Context, text string) (string, error)
	Answer(ctx context.Context, text string) (string, error)
}

// Session holds everything needed to handle render events.
type Session struct {
	tracer    trace.Tracer
	panels    *store.Branch
	transform Transform
	remove    func()
	mu        sync.Mutex
}

// Option configures a [Session].
type Option func(*Session)

// WithPanels sets the branch the rule sets are stored under.
func WithPanels(b *store.Branch) Option {
	return func(s *Session) {
		s.panels = b
	}
}

// WithTransform sets the transform applied to matching cards.
func WithTransform(t Transform) Option {
	return func(s *Session) {
		s.transform = t
	}
}

// NewSession creates a [Session]. [WithPanels] and [WithTransform] are
// required.
func NewSession(opts ...Option) (*Session, error) {
	s := &Session{tracer: otel.Tracer("hook")}
	for _, opt := range opts {
		opt(s)
	}

	if s.panels == nil {
		return nil, fmt.Errorf("%w: no panels branch", ErrIncomplete)
	}
	if s.transform == nil {
		return nil, fmt.Errorf("%w: no transform", ErrIncomplete)
	}

	return s, nil
}

// Register attaches the session's [Session.Filter] to host. When a rule set
// applies to the previewer but the host cannot render preview answers, a
// warning is logged.
func (s *Session) Register(ctx context.Context, host Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove != nil {
		return ErrRegistered
	}

	caps := host.Capabilities()
	if !caps.PreviewAnswer {
		s.warnPreview(ctx)
	}

	s.remove = host.AddCardWillShow(s.Filter)

	log.WithContext(ctx).DebugContext(ctx, "session registered",
		slog.Bool("preview_answer", caps.PreviewAnswer),
	)

	return nil
}

func (s *Session) warnPreview(ctx context.Context) {
	sets, err := finder.LoadAll(s.panels)
	if err != nil {
		log.WithContext(ctx).WarnContext(ctx, "could not load rule sets", slog.Any("err", err))
	}

	for _, rs := range sets {
		if rs.ApplyToPreviewer {
			log.WithContext(ctx).WarnContext(ctx, "host does not render preview answers, rule set will only apply to preview questions",
				slog.String("panel", rs.Name),
			)
		}
	}
}

// Close detaches the session from its host.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove == nil {
		return ErrNotRegistered
	}

	s.remove()
	s.remove = nil

	return nil
}

// Filter is the [Filter] registered with the host. Any error is logged and
// the text is returned unchanged.
func (s *Session) Filter(text string, c card.Card, kind Kind) string {
	ctx := context.Background()

	out, err := s.Render(ctx, text, c, kind)
	if err != nil {
		log.WithContext(ctx).ErrorContext(ctx, "render card",
			slog.Int64("card", c.ID()),
			slog.String("kind", kind.String()),
			slog.Any("err", err),
		)

		return text
	}

	return out
}

// Render applies the first matching rule set, in name order, to text.
func (s *Session) Render(ctx context.Context, text string, c card.Card, kind Kind) (string, error) {
	res, err := s.Evaluate(ctx, c, kind)
	if err != nil {
		return "", err
	}
	if res.Panel == "" {
		return text, nil
	}

	ctx, span := s.tracer.Start(ctx, "transform", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("panel", res.Panel),
	))
	defer span.End()

	var out string
	if kind.IsQuestion() {
		out, err = s.transform.Question(ctx, text)
	} else {
		out, err = s.transform.Answer(ctx, text)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return "", fmt.Errorf("transform: %w", err)
	}

	return out, nil
}

// Decision is the outcome of [Session.Evaluate].
type Decision struct {
	// Panel is the name of the matching rule set, or empty.
	Panel string `json:"panel,omitempty"`
	// Skipped explains why no rule set was evaluated.
	Skipped string `json:"skipped,omitempty"`
}

// Evaluate finds the first rule set, in name order, that applies to kind and
// matches the card. Rule sets are re-read on every call. A rule set that
// cannot be loaded or evaluated is logged and skipped, so it never keeps the
// other rule sets from applying.
func (s *Session) Evaluate(ctx context.Context, c card.Card, kind Kind) (Decision, error) {
	ctx, span := s.tracer.Start(ctx, "evaluate", trace.WithAttributes(
		attribute.Int64("card", c.ID()),
		attribute.String("kind", kind.String()),
	))
	defer span.End()

	if kind.IsLayout() {
		return Decision{Skipped: "card layout"}, nil
	}

	logger := log.WithContext(ctx)

	sets, err := finder.LoadAll(s.panels)
	if err != nil {
		span.RecordError(err)
		logger.WarnContext(ctx, "skipping rule sets", slog.Any("err", err))
	}

	for _, rs := range sets {
		if kind.IsPreview() && !rs.ApplyToPreviewer {
			logger.DebugContext(ctx, "rule set does not apply to previewer", slog.String("panel", rs.Name))
			continue
		}

		ok, err := rs.Evaluate(c)
		if err != nil {
			span.RecordError(err)
			logger.WarnContext(ctx, "skipping rule set",
				slog.String("panel", rs.Name),
				slog.Int64("card", c.ID()),
				slog.Any("err", err),
			)

			continue
		}
		if ok {
			span.SetAttributes(attribute.String("panel", rs.Name))
			return Decision{Panel: rs.Name}, nil
		}
	}

	return Decision{Skipped: "no matching rule set"}, nil
}
