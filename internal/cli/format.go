package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fpang/menu-lens/internal/dish"
)

// FormatDurationShort formats a duration as M:SS or H:MM:SS.
func FormatDurationShort(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// WriteSummary prints one line per dish with its outcome and output file.
func WriteSummary(w io.Writer, dishes []dish.Dish, files map[string]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DISH\tSTATUS\tRESULT")
	for _, d := range dishes {
		result := files[d.ID]
		switch {
		case d.Failure != nil && d.ImageStale:
			result = "kept previous image: " + d.Failure.Message
		case d.Failure != nil:
			result = d.Failure.Message
		case result == "":
			result = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Status, result)
	}
	tw.Flush()
}
