package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printRecords writes records as an aligned table.
func printRecords(w io.Writer, records []calendar.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tWEEK\tDAY\tAM\tPM")
	for _, r := range records {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Key(), r.Day, orDash(r.Am), orDash(r.Pm))
	}
	return tw.Flush()
}

// printWindows writes each window under a heading naming its base week.
func printWindows(w io.Writer, set calendar.WindowSet) error {
	for i, win := range set {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "Window %d: base %s, %d records\n", i+1, win.Base, len(win.Records))
		if err := printRecords(w, win.Records); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
