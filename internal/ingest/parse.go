package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// qaPair is one question/answer entry as read from a source file, before
// trimming and validation.
type qaPair struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// parsePairs decodes content into question/answer pairs based on the given
// extension. ext should include the leading dot (e.g. ".yaml").
func parsePairs(content []byte, ext string) ([]qaPair, error) {
	switch ext {
	case ".yaml", ".yml":
		return parseYAML(content)
	case ".json":
		return parseJSON(content)
	case ".csv":
		return parseCSV(content)
	case ".xlsx":
		return parseXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

func parseYAML(content []byte) ([]qaPair, error) {
	var pairs []qaPair
	if err := yaml.Unmarshal(content, &pairs); err != nil {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}
	return pairs, nil
}

func parseJSON(content []byte) ([]qaPair, error) {
	var pairs []qaPair
	if err := json.Unmarshal(content, &pairs); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return pairs, nil
}

// isHeaderRow reports whether a two-column row is the optional
// "question,answer" header of tabular formats.
func isHeaderRow(question, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(question), "question") &&
		strings.EqualFold(strings.TrimSpace(answer), "answer")
}
