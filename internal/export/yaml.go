package export

import (
	"fmt"
	"io"

	"github.com/plc-visualizer/plc2yaml/internal/models"
	"gopkg.in/yaml.v3"
)

// YAMLEncoder writes block-style YAML with keys in declaration order.
type YAMLEncoder struct {
	indent int
}

func NewYAMLEncoder() *YAMLEncoder {
	return &YAMLEncoder{indent: 2}
}

func (e *YAMLEncoder) Name() string {
	return "yaml"
}

func (e *YAMLEncoder) Extension() string {
	return ".yaml"
}

func (e *YAMLEncoder) ContentType() string {
	return "application/yaml"
}

func (e *YAMLEncoder) Encode(w io.Writer, doc *models.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(e.indent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// DecodeYAML parses a document previously written by YAMLEncoder.
func DecodeYAML(r io.Reader) (*models.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc models.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return &doc, nil
}

// KeyOrder returns the mapping keys of the YAML document's root, in the
// order they appear. Used to check that serialization kept declared order.
func KeyOrder(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("document root is not a mapping")
	}

	m := root.Content[0]
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys, nil
}
