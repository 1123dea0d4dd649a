package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"porthound/models"
)

func sampleReport() *models.ScanReport {
	return &models.ScanReport{
		HostExpr: "192.168.1.1",
		PortExpr: "22,23",
		Hosts:    []string{"192.168.1.1"},
		Ports:    []int{22, 23},
		Entries: []models.ReportEntry{
			{
				ProbeResult: models.ProbeResult{
					Host: "192.168.1.1", Port: 22, State: models.StateOpen,
					Banner: "SSH-2.0-OpenSSH_9.6", Elapsed: 12 * time.Millisecond,
				},
				Service: &models.ServiceGuess{Name: "SSH", Confidence: models.ConfidenceBanner},
			},
			{
				ProbeResult: models.ProbeResult{
					Host: "192.168.1.1", Port: 23, State: models.StateClosed,
					Elapsed: 3 * time.Millisecond,
				},
			},
		},
		OpenCount: 1,
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var got models.ScanReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got.OpenCount != 1 || len(got.Entries) != 2 {
		t.Fatalf("got %d entries, open %d", len(got.Entries), got.OpenCount)
	}
	if got.Entries[0].Service == nil || got.Entries[0].Service.Name != "SSH" {
		t.Fatalf("service guess lost: %+v", got.Entries[0].Service)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "host" || rows[0][6] != "elapsed_ms" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "22" || rows[1][3] != "SSH" || rows[1][4] != "banner_match" {
		t.Fatalf("unexpected open row: %v", rows[1])
	}
	if rows[2][2] != "closed" || rows[2][3] != "" {
		t.Fatalf("unexpected closed row: %v", rows[2])
	}
}

func TestSave_ByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "report.json")
	if err := Save(jsonPath, sampleReport()); err != nil {
		t.Fatalf("save json: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "\"open_count\"") {
		t.Fatalf("json file missing expected field:\n%s", data)
	}

	csvPath := filepath.Join(dir, "report.csv")
	if err := Save(csvPath, sampleReport()); err != nil {
		t.Fatalf("save csv: %v", err)
	}

	if err := Save(filepath.Join(dir, "report.xml"), sampleReport()); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
