package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/Altaaaf/Proxy-Checker/internal/model"
)

// PrintResultsTable prints a human-readable table of per-proxy results.
// Dead and timed-out proxies are included only when showDead is set.
func PrintResultsTable(w io.Writer, outcomes []model.CheckOutcome, showDead bool) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "IP:PORT\tSTATUS\tATTEMPTS\tELAPSED(ms)\tERROR")
	for _, o := range outcomes {
		if !o.Alive() && !showDead {
			continue
		}
		errText := "-"
		if o.Err != "" {
			errText = o.Err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			o.Record.Addr(),
			o.Status,
			o.Attempts,
			o.Elapsed.Milliseconds(),
			errText,
		)
	}

	tw.Flush()
}

// PrintSummary prints the aggregated batch stats.
func PrintSummary(w io.Writer, stats model.BatchStats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Checked proxies:       %d\n", stats.TotalProxies)
	fmt.Fprintf(w, "  Alive:                 %d\n", stats.AliveProxies)
	fmt.Fprintf(w, "  Dead:                  %d\n", stats.DeadProxies)
	fmt.Fprintf(w, "  Timed out:             %d\n", stats.TimedOutProxies)
	fmt.Fprintf(w, "  Dropped malformed:     %d\n", stats.MalformedLines)
	fmt.Fprintf(w, "  Dropped duplicates:    %d\n", stats.DuplicateLines)
	fmt.Fprintf(w, "  Success rate:          %.1f%%\n", stats.SuccessRatePct)
	fmt.Fprintf(w, "  Avg latency (alive):   %.1f ms\n", stats.AvgLatencyMs)
	fmt.Fprintf(w, "  Checked per minute:    %.0f\n", stats.CheckedPerMinute)
	fmt.Fprintf(w, "  Batch time:            %.2f s\n", float64(stats.TotalProcessingTimeMs)/1000.0)
}

// WriteFile writes the run to a file. Format "txt" writes alive
// proxies one host:port per line; "json" and "csv" include every
// outcome plus the summary.
func WriteFile(path, format string, outcomes []model.CheckOutcome, stats model.BatchStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch format {
	case "txt":
		return writeAliveList(f, outcomes)
	case "json":
		return writeJSON(f, outcomes, stats)
	case "csv":
		return writeCSV(f, outcomes)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// writeAliveList writes the plain list the next tool in a pipeline
// usually wants: working proxies only, original line format.
func writeAliveList(w io.Writer, outcomes []model.CheckOutcome) error {
	for _, o := range outcomes {
		if !o.Alive() {
			continue
		}
		line := o.Record.Raw
		if line == "" {
			line = o.Record.Addr()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, outcomes []model.CheckOutcome, stats model.BatchStats) error {
	payload := struct {
		Results []model.CheckOutcome `json:"results"`
		Summary model.BatchStats     `json:"summary"`
	}{
		Results: outcomes,
		Summary: stats,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeCSV(w io.Writer, outcomes []model.CheckOutcome) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"host", "port", "status", "attempts", "elapsed_ms", "error"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, o := range outcomes {
		row := []string{
			o.Record.Host,
			strconv.Itoa(o.Record.Port),
			string(o.Status),
			strconv.Itoa(o.Attempts),
			strconv.FormatInt(o.Elapsed.Milliseconds(), 10),
			o.Err,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	return nil
}
