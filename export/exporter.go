package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"porthound/models"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, report *models.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCSV writes one row per entry with a header line. Service columns
// are empty for entries without a guess.
func WriteCSV(w io.Writer, report *models.ScanReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"host", "port", "state", "service", "confidence", "banner", "elapsed_ms"}); err != nil {
		return err
	}

	for _, e := range report.Entries {
		service, confidence := "", ""
		if e.Service != nil {
			service = e.Service.Name
			confidence = string(e.Service.Confidence)
		}
		row := []string{
			e.Host,
			strconv.Itoa(e.Port),
			string(e.State),
			service,
			confidence,
			e.Banner,
			strconv.FormatInt(e.Elapsed.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Save writes the report to path, choosing the format from the file
// extension (.json or .csv).
func Save(path string, report *models.ScanReport) error {
	var write func(io.Writer, *models.ScanReport) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		write = WriteJSON
	case ".csv":
		write = WriteCSV
	default:
		return fmt.Errorf("unsupported export format %q, use .json or .csv", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := write(f, report); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}
