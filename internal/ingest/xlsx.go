package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func parseXLSX(content []byte) ([]qaPair, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
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
