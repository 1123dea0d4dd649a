package scanner

import (
	"context"
	"log"
	"time"

	"porthound/models"
)

// Options configures one scan run.
type Options struct {
	Concurrency   int
	Timeout       time.Duration
	BannerTimeout time.Duration
	// ServiceDetect enables the banner grab on open ports and the
	// service identification pass.
	ServiceDetect bool
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BannerTimeout <= 0 {
		o.BannerTimeout = DefaultBannerTimeout
	}
	return o
}

// Engine wires the scan stages together: resolve -> schedule -> identify
// -> aggregate. Each Scan call builds its own scheduler and report, so
// engines are safe to reuse across scans.
type Engine struct {
	opts       Options
	identifier *Identifier
	probe      ProbeFunc
}

// NewEngine creates a scan engine. The identifier may be nil when
// service detection is disabled.
func NewEngine(opts Options, identifier *Identifier) *Engine {
	opts = opts.withDefaults()
	prober := NewProber(opts.Timeout, opts.BannerTimeout)
	return &Engine{opts: opts, identifier: identifier, probe: prober.Probe}
}

// SetProbeFunc substitutes the network prober, for tests running
// against stub targets.
func (e *Engine) SetProbeFunc(fn ProbeFunc) {
	e.probe = fn
}

// Scan resolves both expressions, probes every unit and returns the
// assembled report. Resolution failures (*InvalidSpecError) abort
// before any network activity; everything after that is absorbed into
// per-unit states. Cancelling ctx yields a full-length report in which
// unfinished units carry the not_scanned marker.
func (e *Engine) Scan(ctx context.Context, hostExpr, portExpr string) (*models.ScanReport, error) {
	hosts, ports, err := Resolve(hostExpr, portExpr)
	if err != nil {
		return nil, err
	}
	units := ExpandUnits(hosts, ports)

	log.Printf("[Engine] Scanning %d hosts x %d ports (%d units, concurrency %d)",
		len(hosts), len(ports), len(units), e.opts.Concurrency)
	start := time.Now()

	sched := NewScheduler(e.opts.Concurrency, e.opts.ServiceDetect, e.probe)
	results := sched.Run(ctx, units)

	guesses := make(map[models.ProbeUnit]*models.ServiceGuess)
	if e.opts.ServiceDetect && e.identifier != nil {
		for _, r := range results {
			if r.State != models.StateOpen {
				continue
			}
			guess := e.identifier.Identify(r.Port, r.Banner)
			guesses[r.Unit()] = &guess
		}
	}

	report, err := Aggregate(hosts, ports, results, guesses)
	if err != nil {
		return nil, err
	}
	report.HostExpr = hostExpr
	report.PortExpr = portExpr

	elapsed := time.Since(start)
	log.Printf("[Engine] Scan finished: %d open / %d units in %v (%.0f probes/sec)",
		report.OpenCount, len(units), elapsed.Round(time.Millisecond),
		float64(len(units))/elapsed.Seconds())

	return report, nil
}
