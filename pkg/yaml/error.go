package yaml

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"

	"github.com/macropower/cardfont/pkg/theme"
)

const defaultSourceLines = 3

func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

type ErrorWrapper struct {
	Opts []ErrorOpt
}

func NewErrorWrapper(opts ...ErrorOpt) *ErrorWrapper {
	return &ErrorWrapper{
		Opts: opts,
	}
}

// Wrap wraps an error with additional context for [Error]s.
// If the error isn't an [Error], it returns the original error unmodified.
func (ew *ErrorWrapper) Wrap(err error, opts ...ErrorOpt) error {
	if err == nil {
		return nil
	}

	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range ew.Opts {
			opt(yamlErr)
		}

		for _, opt := range opts {
			opt(yamlErr)
		}

		return yamlErr
	}

	return err
}

// Error is a YAML error located either by a [*token.Token] or by a
// [*yaml.Path] into Source.
type Error struct {
	Err         error
	Path        *yaml.Path
	Token       *token.Token
	Theme       *theme.Theme
	Source      []byte
	SourceLines int // Number of lines to show around the error in the source.
	Plain       bool
}

func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{
		Err:         err,
		SourceLines: defaultSourceLines,
		Theme:       theme.Default,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

type ErrorOpt func(e *Error)

func WithSourceLines(lines int) ErrorOpt {
	return func(e *Error) {
		e.SourceLines = lines
	}
}

func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

func WithTheme(t *theme.Theme) ErrorOpt {
	return func(e *Error) {
		e.Theme = t
	}
}

func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

// WithPlain disables colour in the annotated source.
func WithPlain(plain bool) ErrorOpt {
	return func(e *Error) {
		e.Plain = plain
	}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Error() string {
	if e.Err == nil {
		return ""
	}
	if e.Path == nil && e.Token == nil {
		return e.Err.Error()
	}
	if len(e.Source) == 0 {
		if e.Token != nil {
			return fmt.Sprintf("[%d:%d] %v", e.Token.Position.Line, e.Token.Position.Column, e.Err)
		}

		return fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	}

	errMsg, srcErr := e.annotateSource()
	if srcErr != nil {
		slog.Debug("failed to annotate config with error",
			slog.String("path", e.Path.String()),
			slog.Any("error", srcErr),
		)

		return fmt.Sprintf("error at %s: %v", e.Path.String(), e.Err)
	}

	return errMsg
}

func (e Error) annotateSource() (string, error) {
	tk := e.Token
	if tk == nil {
		var err error

		tk, err = getTokenFromPath(e.Source, e.Path)
		if err != nil {
			return "", fmt.Errorf("get token from path: %w", err)
		}
	}

	line := tk.Position.Line
	col := tk.Position.Column

	return fmt.Sprintf("[%d:%d] %v:\n\n%s", line, col, e.Err, e.renderSource(line, col)), nil
}

// renderSource prints the lines around the error with line numbers and a
// marker under the error column.
func (e Error) renderSource(line, col int) string {
	th := e.Theme
	if th == nil {
		th = theme.Default
	}

	lines := strings.Split(string(e.Source), "\n")
	start := max(line-e.SourceLines, 1)
	end := min(line+e.SourceLines, len(lines))

	snippet := strings.Join(lines[start-1:end], "\n")
	highlighted := snippet

	if !e.Plain {
		sb := &strings.Builder{}
		if err := th.Highlight(sb, snippet, "yaml"); err == nil {
			highlighted = sb.String()
		}
	}

	width := len(fmt.Sprint(end))
	out := &strings.Builder{}

	for i, l := range strings.Split(highlighted, "\n") {
		n := start + i
		prefix := fmt.Sprintf("%*d | ", width, n)
		marker := "  "
		if n == line {
			marker = "> "
		}

		out.WriteString(e.style(th.LineNumberStyle, marker+prefix))
		out.WriteString(l)
		out.WriteString("\n")

		if n == line {
			pad := strings.Repeat(" ", len(marker)+len(prefix)+max(col-1, 0))
			out.WriteString(pad)
			out.WriteString(e.style(th.ErrorStyle, "^"))
			out.WriteString("\n")
		}
	}

	return strings.TrimRight(out.String(), "\n")
}

func (e Error) style(s lipgloss.Style, str string) string {
	if e.Plain {
		return str
	}

	return s.Render(str)
}

func getTokenFromPath(source []byte, path *yaml.Path) (*token.Token, error) {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil, fmt.Errorf("parse source bytes into ast.File: %w", err)
	}

	node, err := path.FilterFile(file)
	if err != nil {
		return nil, fmt.Errorf("filter from ast.File by YAMLPath: %w", err)
	}

	// FilterFile returns the value node, but the key reads better in errors.
	keyToken := findKeyToken(file, path)
	if keyToken != nil {
		return keyToken, nil
	}

	return node.GetToken(), nil
}

// findKeyToken attempts to find the KEY token for the given path by looking
// in the parent node.
func findKeyToken(file *ast.File, path *yaml.Path) *token.Token {
	pathStr := path.String()

	lastDot := strings.LastIndex(pathStr, ".")
	lastBracket := strings.LastIndex(pathStr, "[")

	if lastDot == -1 && lastBracket == -1 {
		return nil
	}
	if lastDot <= lastBracket {
		return nil
	}

	parentPathStr := pathStr[:lastDot]
	lastSegment := strings.Trim(pathStr[lastDot+1:], "'")

	parentPath, err := yaml.PathString(parentPathStr)
	if err != nil {
		return nil
	}

	parentNode, err := parentPath.FilterFile(file)
	if err != nil {
		return nil
	}

	if mapping, ok := parentNode.(*ast.MappingNode); ok {
		for _, val := range mapping.Values {
			if val.Key.String() == lastSegment {
				return val.Key.GetToken()
			}
		}
	}

	return nil
}
