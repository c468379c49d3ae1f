// Package e2e provides end-to-end tests; this file renders QA files for the supported ingest formats.
package e2e

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// SupportedFileExtensions is the list of QA file extensions used in E2E
// file-based tests, one per parser the ingestor supports. The .yml alias
// shares the .yaml code path and is not listed separately.
var SupportedFileExtensions = []string{".yaml", ".json", ".csv", ".xlsx"}

// qaFileEntry mirrors the on-disk QA pair shape for YAML and JSON files.
type qaFileEntry struct {
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// WriteQAFile renders pairs as file content for the given extension.
func WriteQAFile(ext string, pairs []QAPair) ([]byte, error) {
	entries := make([]qaFileEntry, len(pairs))
	for i, p := range pairs {
		entries[i] = qaFileEntry{Question: p.Question, Answer: p.Answer}
	}
	switch ext {
	case ".yaml", ".yml":
		return yaml.Marshal(entries)
	case ".json":
		return json.MarshalIndent(entries, "", "  ")
	case ".csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"question", "answer"}); err != nil {
			return nil, err
		}
		for _, p := range pairs {
			if err := w.Write([]string{p.Question, p.Answer}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	case ".xlsx":
		return qaXlsx(pairs)
	default:
		return yaml.Marshal(entries)
	}
}

func qaXlsx(pairs []QAPair) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	_ = f.SetCellValue("Sheet1", "A1", "question")
	_ = f.SetCellValue("Sheet1", "B1", "answer")
	for i, p := range pairs {
		row := i + 2
		_ = f.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), p.Question)
		_ = f.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), p.Answer)
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
