package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// RunResult pairs a parameter set with its per-repetition scores.
type RunResult struct {
	Params ParameterSet
	Scores []float64
}

// Average returns the mean score.
func (r RunResult) Average() float64 { return Mean(r.Scores) }

// StdDev returns the population standard deviation of the scores.
func (r RunResult) StdDev() float64 { return StdDev(r.Scores) }

// ResultWriter serializes run results to CSV, one row per evaluated
// configuration. The header is parameter names followed by one fmacro
// column per score, then fmacro_avg and fmacro_std.
type ResultWriter struct {
	w         *csv.Writer
	keys      []string
	scoreCols int
}

// NewResultWriter writes the CSV header for the given parameter names and
// score column count and returns a writer for the result rows.
func NewResultWriter(w io.Writer, keys []string, scoreCols int) (*ResultWriter, error) {
	header := make([]string, 0, len(keys)+scoreCols+2)
	header = append(header, keys...)
	for i := 0; i < scoreCols; i++ {
		header = append(header, fmt.Sprintf("fmacro_%d", i+1))
	}
	header = append(header, "fmacro_avg", "fmacro_std")

	rw := &ResultWriter{
		w:         csv.NewWriter(w),
		keys:      keys,
		scoreCols: scoreCols,
	}
	if err := rw.w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	rw.w.Flush()
	return rw, rw.w.Error()
}

// Write emits one row for the result. Parameters missing from the set leave
// their cell empty; missing trailing scores do likewise.
func (rw *ResultWriter) Write(res RunResult) error {
	row := make([]string, 0, len(rw.keys)+rw.scoreCols+2)
	for _, k := range rw.keys {
		v, ok := res.Params[k]
		if !ok {
			row = append(row, "")
			continue
		}
		row = append(row, FormatValue(v))
	}
	for i := 0; i < rw.scoreCols; i++ {
		if i < len(res.Scores) {
			row = append(row, formatScore(res.Scores[i]))
		} else {
			row = append(row, "")
		}
	}
	row = append(row, formatScore(res.Average()), formatScore(res.StdDev()))

	if err := rw.w.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	// flush per row so an aborted sweep keeps its completed results
	rw.w.Flush()
	return rw.w.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
