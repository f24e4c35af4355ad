package run

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	timestampLayout = "2006-01-02T15:04:05-07:00"
	localLayout     = "2006-01-02T15:04:05"
	dateLayout      = "2006-01-02"
)

// Stamp is the run-global timestamp shared by every row a stage emits.
type Stamp struct {
	at time.Time
}

func Now() Stamp {
	return At(time.Now())
}

func At(t time.Time) Stamp {
	return Stamp{at: t.UTC().Truncate(time.Second)}
}

// Parse accepts RFC 3339, a timestamp without offset (read as UTC) or a
// bare date.
func Parse(value string) (Stamp, error) {
	for _, layout := range []string{time.RFC3339, localLayout, dateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return At(t), nil
		}
	}
	return Stamp{}, fmt.Errorf("invalid run timestamp %q", value)
}

// OrNow returns s, or the current time when s was never set.
func (s Stamp) OrNow() Stamp {
	if s.IsZero() {
		return Now()
	}
	return s
}

func (s Stamp) IsZero() bool {
	return s.at.IsZero()
}

func (s Stamp) Time() time.Time {
	return s.at
}

// Timestamp renders second precision with an explicit UTC offset,
// e.g. 2024-05-01T10:30:15+00:00.
func (s Stamp) Timestamp() string {
	return s.at.Format(timestampLayout)
}

// PlainTimestamp renders the UTC time without an offset,
// e.g. 2024-05-01T10:30:15.
func (s Stamp) PlainTimestamp() string {
	return s.at.Format(localLayout)
}

// Date is the partition key derived from the timestamp.
func (s Stamp) Date() string {
	return s.at.Format(dateLayout)
}

func (s Stamp) String() string {
	return s.Timestamp()
}

// PartitionPath returns {root}/{run_date}/{filename}.
func PartitionPath(root, runDate, filename string) string {
	return filepath.Join(root, runDate, filename)
}
