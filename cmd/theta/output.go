package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	theta "github.com/thetafeed/theta-go"
	"github.com/thetafeed/theta-go/tick"
)

// parseDate accepts YYYYMMDD or YYYY-MM-DD.
func parseDate(s string) (time.Time, error) {
	if strings.Contains(s, "-") {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: %w", s, err)
		}
		return t, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return theta.DateFromInt(v)
}

// parseStrike accepts a USD amount ("150", "152.5") and converts it to the
// wire's milli-USD integer exactly.
func parseStrike(s string) (theta.Strike, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("strike %q: %w", s, err)
	}
	milli := d.Shift(3)
	if !milli.IsInteger() {
		return 0, fmt.Errorf("strike %q: finer than milli-dollar", s)
	}
	return theta.Strike(milli.IntPart()), nil
}

// parseInterval accepts a Go duration ("1m", "5m", "1h") or a bare
// millisecond count.
func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("interval %q: %w", s, err)
	}
	return d, nil
}

// printTable renders a tick table with one column per data type.
func printTable(t *tick.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	headers := make([]string, t.NumCols())
	for i, col := range t.Columns {
		headers[i] = col.Type.String()
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for r := 0; r < t.NumRows(); r++ {
		cells := make([]string, t.NumCols())
		for c := range t.Columns {
			cells[c] = formatCell(&t.Columns[c], r)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func formatCell(col *tick.Column, row int) string {
	switch col.Kind() {
	case tick.KindFloat:
		return strconv.FormatFloat(col.Floats[row], 'f', -1, 64)
	case tick.KindDate:
		return col.Dates[row].Format("2006-01-02")
	default:
		return strconv.FormatInt(int64(col.Ints[row]), 10)
	}
}

// printDates renders a date listing one per line.
func printDates(dates []time.Time) {
	for _, d := range dates {
		fmt.Println(d.Format("2006-01-02"))
	}
}

// msClock renders a milliseconds-since-midnight value as a clock time.
func msClock(ms int32) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60, d.Milliseconds()%1000)
}
