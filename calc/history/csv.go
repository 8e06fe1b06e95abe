package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"kind", "id", "timestamp", "hardware_id", "model_id",
	"mfu_percent", "bandwidth_percent", "bottleneck",
	"max_concurrency", "max_concurrency_paged",
}

// ExportCSV writes all entries, newest first. Fields that do not apply to an
// entry's kind come out zero-valued, matching the JSON representation.
func (s *Store) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range s.Entries() {
		row := []string{
			string(e.Kind),
			e.ID,
			e.Timestamp.UTC().Format(time.RFC3339),
			e.HardwareID,
			e.ModelID,
			strconv.FormatFloat(e.MFUPercent, 'g', -1, 64),
			strconv.FormatFloat(e.BandwidthPercent, 'g', -1, 64),
			e.Bottleneck,
			strconv.Itoa(e.MaxConcurrency),
			strconv.Itoa(e.MaxConcurrencyPaged),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
