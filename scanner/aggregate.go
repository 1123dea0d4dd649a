package scanner

import (
	"fmt"

	"porthound/models"
)

// Aggregate merges probe results and service guesses into the final
// report. The merge is keyed by probe unit identity and is strictly
// deterministic: entries come out host-major, port-ascending no matter
// what order the results completed in. Every resolved (host, port) pair
// must map to exactly one result; a hole or a duplicate indicates an
// internal scheduling bug and fails the merge.
func Aggregate(hosts []string, ports []int, results []models.ProbeResult, guesses map[models.ProbeUnit]*models.ServiceGuess) (*models.ScanReport, error) {
	byUnit := make(map[models.ProbeUnit]models.ProbeResult, len(results))
	for _, r := range results {
		unit := r.Unit()
		if _, dup := byUnit[unit]; dup {
			return nil, fmt.Errorf("duplicate probe result for %s:%d", unit.Host, unit.Port)
		}
		byUnit[unit] = r
	}

	report := &models.ScanReport{
		Hosts:   hosts,
		Ports:   ports,
		Entries: make([]models.ReportEntry, 0, len(hosts)*len(ports)),
	}

	for _, h := range hosts {
		for _, p := range ports {
			unit := models.ProbeUnit{Host: h, Port: p}
			result, ok := byUnit[unit]
			if !ok {
				return nil, fmt.Errorf("missing probe result for %s:%d", h, p)
			}

			entry := models.ReportEntry{ProbeResult: result}
			if guess, ok := guesses[unit]; ok {
				entry.Service = guess
			}
			report.Entries = append(report.Entries, entry)

			if result.State == models.StateOpen {
				report.OpenCount++
			}
		}
	}

	return report, nil
}
