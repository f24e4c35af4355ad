package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lysyi3m/event-comb/app/classify"
	"github.com/lysyi3m/event-comb/app/links"
	"github.com/lysyi3m/event-comb/app/run"
)

const (
	LinksFilename  = "01_all_links.csv"
	EventsFilename = "03_events.csv"
)

var (
	linkColumns = []string{"run_date", "scraped_at", "page_url", "event_url_raw", "event_url_abs", "link_id"}

	eventColumns = []string{
		"url", "homepage_url", "page_type", "title", "summary", "category", "start_date",
		"start_time", "venue", "price", "is_free", "tags", "confidence", "run_date", "extracted_at",
	}
)

// PartialName maps "03_events.csv" to "03_events.partial.csv".
func PartialName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + ".partial" + ext
}

// Writer persists stage tables under {root}/{run_date}/. Each write replaces
// the whole file, and a header is written even for an empty table.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

func (w *Writer) WriteLinks(runDate, filename string, rows []links.Record) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.RunDate, row.ScrapedAt, row.PageURL, row.EventURLRaw, row.EventURLAbs, row.LinkID,
		})
	}
	return w.write(runDate, filename, linkColumns, records)
}

func (w *Writer) WriteEvents(runDate, filename string, rows []classify.EventRecord) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		tags, err := encodeTags(row.Tags)
		if err != nil {
			return "", err
		}
		records = append(records, []string{
			row.URL,
			row.HomepageURL,
			string(row.PageType),
			stringCell(row.Title),
			stringCell(row.Summary),
			string(row.Category),
			stringCell(row.StartDate),
			stringCell(row.StartTime),
			stringCell(row.Venue),
			stringCell(row.Price),
			boolCell(row.IsFree),
			tags,
			strconv.FormatFloat(row.Confidence, 'f', -1, 64),
			row.RunDate,
			row.ExtractedAt,
		})
	}
	return w.write(runDate, filename, eventColumns, records)
}

func (w *Writer) write(runDate, filename string, header []string, records [][]string) (string, error) {
	path := run.PartitionPath(w.root, runDate, filename)
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filename+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write rows: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move output into place: %w", err)
	}

	return path, nil
}

func stringCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolCell(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

// encodeTags renders tags as a JSON array, "[]" when there are none.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}
