package scanner

import (
	"testing"

	"porthound/models"
)

func TestAggregate_OrderAndLength(t *testing.T) {
	hosts := []string{"10.0.0.1", "10.0.0.2"}
	ports := []int{22, 80}

	// Results deliberately shuffled: completion order must not matter.
	results := []models.ProbeResult{
		{Host: "10.0.0.2", Port: 80, State: models.StateClosed},
		{Host: "10.0.0.1", Port: 22, State: models.StateOpen},
		{Host: "10.0.0.2", Port: 22, State: models.StateFiltered},
		{Host: "10.0.0.1", Port: 80, State: models.StateOpen},
	}
	guesses := map[models.ProbeUnit]*models.ServiceGuess{
		{Host: "10.0.0.1", Port: 22}: {Name: "SSH", Confidence: models.ConfidenceTable},
	}

	report, err := Aggregate(hosts, ports, results, guesses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Entries) != len(hosts)*len(ports) {
		t.Fatalf("got %d entries, want %d", len(report.Entries), len(hosts)*len(ports))
	}
	wantOrder := []models.ProbeUnit{
		{Host: "10.0.0.1", Port: 22},
		{Host: "10.0.0.1", Port: 80},
		{Host: "10.0.0.2", Port: 22},
		{Host: "10.0.0.2", Port: 80},
	}
	for i, e := range report.Entries {
		if e.Unit() != wantOrder[i] {
			t.Fatalf("entry %d is %v, want %v", i, e.Unit(), wantOrder[i])
		}
	}
	if report.OpenCount != 2 {
		t.Fatalf("open count = %d, want 2", report.OpenCount)
	}
	if report.Entries[0].Service == nil || report.Entries[0].Service.Name != "SSH" {
		t.Fatal("service guess not attached to open entry")
	}
	if report.Entries[1].Service != nil && report.Entries[1].Service.Name != "" {
		// 10.0.0.1:80 had no guess supplied
		t.Fatal("unexpected service guess attached")
	}
}

func TestAggregate_MissingUnit(t *testing.T) {
	hosts := []string{"10.0.0.1"}
	ports := []int{22, 80}
	results := []models.ProbeResult{
		{Host: "10.0.0.1", Port: 22, State: models.StateOpen},
	}

	if _, err := Aggregate(hosts, ports, results, nil); err == nil {
		t.Fatal("expected error for missing unit")
	}
}

func TestAggregate_DuplicateUnit(t *testing.T) {
	hosts := []string{"10.0.0.1"}
	ports := []int{22}
	results := []models.ProbeResult{
		{Host: "10.0.0.1", Port: 22, State: models.StateOpen},
		{Host: "10.0.0.1", Port: 22, State: models.StateClosed},
	}

	if _, err := Aggregate(hosts, ports, results, nil); err == nil {
		t.Fatal("expected error for duplicate unit")
	}
}
