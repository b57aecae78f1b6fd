// Package export renders a user's records as a CSV attachment.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/models"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
	ContentType     = "text/csv"
)

// Header is the first CSV row.
var Header = []string{"Training Name", "Category", "Hours", "Link", "Date Added"}

// Range is an optional inclusive date window. Raw keeps the caller's text for
// the filename.
type Range struct {
	Start    *time.Time
	End      *time.Time
	RawStart string
	RawEnd   string
}

// ParseRange turns optional YYYY-MM-DD strings into bounds. The start bound is
// midnight of its day; the end bound is 23:59:59 of its day so the whole end
// day is included. Blank strings leave the bound open.
func ParseRange(start, end string) (Range, error) {
	r := Range{RawStart: strings.TrimSpace(start), RawEnd: strings.TrimSpace(end)}
	if r.RawStart != "" {
		t, err := time.ParseInLocation(DateLayout, r.RawStart, time.UTC)
		if err != nil {
			return Range{}, common.NewValidationError("Invalid start date")
		}
		r.Start = &t
	}
	if r.RawEnd != "" {
		t, err := time.ParseInLocation(DateLayout, r.RawEnd, time.UTC)
		if err != nil {
			return Range{}, common.NewValidationError("Invalid end date")
		}
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		r.End = &t
	}
	return r, nil
}

// Filename embeds both bounds, with "all" for an open bound.
func (r Range) Filename() string {
	start, end := r.RawStart, r.RawEnd
	if start == "" {
		start = "all"
	}
	if end == "" {
		end = "all"
	}
	return fmt.Sprintf("cpe_records_%s_%s.csv", start, end)
}

// ContentDisposition is the attachment header value for r.
func (r Range) ContentDisposition() string {
	return "attachment; filename=" + r.Filename()
}

// FormatHours uses the shortest decimal form that round-trips.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// WriteCSV writes the header and one row per record, in the order given.
func WriteCSV(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.TrainingName,
			rec.Category,
			FormatHours(rec.Hours),
			rec.Link,
			rec.CreatedAt.Format(TimestampLayout),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
