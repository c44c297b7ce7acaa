package yaml

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/parser"
)

// MergeRootFromValue merges the top-level keys of v into the YAML document
// data. A key present in both takes v's value, and keys only in v are
// appended. Comments attached to the document's keys are kept.
func MergeRootFromValue(data []byte, v any) ([]byte, error) {
	file, err := parser.ParseBytes(data, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	node, err := yaml.ValueToNode(v, DefaultEncoderOptions...)
	if err != nil {
		return nil, fmt.Errorf("convert value to node: %w", err)
	}

	err = NewPathBuilder().Root().Build().MergeFromNode(file, node)
	if err != nil {
		return nil, fmt.Errorf("merge yaml: %w", err)
	}

	return []byte(file.String()), nil
}
