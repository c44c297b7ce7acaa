package hook

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownKind is returned when parsing an unknown render event [Kind].
var ErrUnknownKind = errors.New("unknown render kind")

// Kind identifies where and which side of a card is rendered.
type Kind string

const (
	KindReviewQuestion  Kind = "reviewQuestion"
	KindReviewAnswer    Kind = "reviewAnswer"
	KindPreviewQuestion Kind = "previewQuestion"
	KindPreviewAnswer   Kind = "previewAnswer"
	KindLayoutQuestion  Kind = "clayoutQuestion"
	KindLayoutAnswer    Kind = "clayoutAnswer"
)

// Kinds lists all render kinds.
var Kinds = []Kind{
	KindReviewQuestion,
	KindReviewAnswer,
	KindPreviewQuestion,
	KindPreviewAnswer,
	KindLayoutQuestion,
	KindLayoutAnswer,
}

// ParseKind parses a [Kind].
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// IsQuestion reports whether the question side is rendered.
func (k Kind) IsQuestion() bool {
	return strings.HasSuffix(string(k), "Question")
}

// IsPreview reports whether the card is rendered in the browser's previewer.
func (k Kind) IsPreview() bool {
	return strings.HasPrefix(string(k), "preview")
}

// IsLayout reports whether the card is rendered in the card layout editor.
func (k Kind) IsLayout() bool {
	return strings.HasPrefix(string(k), "clayout")
}

func (k Kind) String() string {
	return string(k)
}
