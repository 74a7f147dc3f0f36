// Package csvexport renders time-entry export rows as CSV text.
package csvexport

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"time-ledger/internal/timecalc"
)

// Header is always the first line, even for an empty export.
const Header = "Username,Project,Task,Labor Code,Description,Date,Hours,Minutes,Cost"

// Row is one exported entry. Empty Task or LaborCode render as empty fields.
type Row struct {
	Username    string
	Project     string
	Task        string
	LaborCode   string
	Description string
	Date        time.Time
	Hours       uint8
	Minutes     uint8
	Cost        decimal.Decimal
}

// Write emits the header and one line per row.
func Write(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := bw.WriteString(Line(r) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String renders the whole export in memory.
func String(rows []Row) string {
	var sb strings.Builder
	_ = Write(&sb, rows)
	return sb.String()
}

func Line(r Row) string {
	fields := []string{
		Escape(r.Username),
		Escape(r.Project),
		Escape(r.Task),
		Escape(r.LaborCode),
		Escape(r.Description),
		r.Date.Format(timecalc.DayLayout),
		strconv.Itoa(int(r.Hours)),
		strconv.Itoa(int(r.Minutes)),
		r.Cost.StringFixed(2),
	}
	return strings.Join(fields, ",")
}

// Escape wraps a field in quotes if it contains a comma, quote, or newline,
// doubling interior quotes.
func Escape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
