package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lysyi3m/event-comb/app/classify"
)

// Column pairs accepted as classification input, in order of preference.
var candidateColumns = [][2]string{
	{"url", "homepage_url"},
	{"event_url_abs", "page_url"},
}

// ReadCandidates loads classification candidates from a CSV that carries
// either url/homepage_url columns or a links table's event_url_abs/page_url.
func ReadCandidates(path string) ([]classify.Candidate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index := columnIndex(header)

	urlCol, homepageCol := -1, -1
	for _, pair := range candidateColumns {
		u, uok := index[pair[0]]
		h, hok := index[pair[1]]
		if uok && hok {
			urlCol, homepageCol = u, h
			break
		}
	}
	if urlCol < 0 {
		return nil, fmt.Errorf("candidates file %s has neither url,homepage_url nor event_url_abs,page_url columns", path)
	}

	var candidates []classify.Candidate
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read candidates: %w", err)
		}
		if urlCol >= len(record) || homepageCol >= len(record) {
			return nil, fmt.Errorf("candidates file %s: line %d is missing columns", path, line)
		}

		candidate := classify.Candidate{
			URL:         strings.TrimSpace(record[urlCol]),
			HomepageURL: strings.TrimSpace(record[homepageCol]),
		}
		if candidate.URL == "" {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// ReadRows returns every data row of a CSV keyed by header name.
func ReadRows(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rows := make([]map[string]string, 0, len(records))
	if len(records) == 0 {
		return rows, nil
	}

	header := records[0]
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, column := range header {
		column = strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))
		if _, exists := index[column]; !exists {
			index[column] = i
		}
	}
	return index
}
