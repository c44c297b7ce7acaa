package finder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single regular expression match.
const MatchTimeout = 250 * time.Millisecond

// ErrInvalidPattern is returned when a regular expression does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

var patterns sync.Map // map[string]*regexp2.Regexp

// compilePattern compiles (or fetches from cache) a pattern.
func compilePattern(pattern string) (*regexp2.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp2.Regexp), nil //nolint:forcetypeassert // Only *regexp2.Regexp is stored.
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, pattern, err)
	}

	re.MatchTimeout = MatchTimeout

	actual, _ := patterns.LoadOrStore(pattern, re)

	return actual.(*regexp2.Regexp), nil //nolint:forcetypeassert // Only *regexp2.Regexp is stored.
}

// search reports whether pattern matches anywhere in s.
func search(pattern, s string) (bool, error) {
	re, err := compilePattern(pattern)
	if err != nil {
		return false, err
	}

	ok, err := re.MatchString(s)
	if err != nil {
		return false, fmt.Errorf("match %q: %w", pattern, err)
	}

	return ok, nil
}

// ValidatePattern reports whether pattern compiles.
func ValidatePattern(pattern string) error {
	_, err := compilePattern(pattern)

	return err
}
