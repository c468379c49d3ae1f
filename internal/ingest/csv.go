package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

func parseCSV(content []byte) ([]qaPair, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode CSV: %w", err)
	}

	pairs := make([]qaPair, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if i == 0 && isHeaderRow(row[0], row[1]) {
			continue
		}
		pairs = append(pairs, qaPair{Question: row[0], Answer: row[1]})
	}
	return pairs, nil
}
