package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PortState classifies the outcome of a single TCP connect probe.
type PortState string

const (
	// StateOpen means the full TCP handshake completed.
	StateOpen PortState = "open"
	// StateClosed means the peer actively refused the connection (RST).
	StateClosed PortState = "closed"
	// StateFiltered means no definitive response within the timeout:
	// silent drop, host unreachable and packet loss are indistinguishable
	// at the connect level and all report as filtered.
	StateFiltered PortState = "filtered"
	// StateNotScanned marks units that were never dispatched because the
	// scan was cancelled. It never appears in a completed scan.
	StateNotScanned PortState = "not_scanned"
)

// Confidence records how a service name was derived.
type Confidence string

const (
	ConfidenceTable   Confidence = "table_lookup"
	ConfidenceBanner  Confidence = "banner_match"
	ConfidenceUnknown Confidence = "unknown"
)

// ProbeUnit is a single (host, port) pair to probe. Units are expanded
// host-major, port-ascending and each one is consumed exactly once.
type ProbeUnit struct {
	Host string `json:"host" bson:"host"`
	Port int    `json:"port" bson:"port"`
}

// ProbeResult is the immutable outcome of one probe.
type ProbeResult struct {
	Host    string        `json:"host" bson:"host"`
	Port    int           `json:"port" bson:"port"`
	State   PortState     `json:"state" bson:"state"`
	Banner  string        `json:"banner,omitempty" bson:"banner,omitempty"`
	Elapsed time.Duration `json:"elapsed" bson:"elapsed"`
}

// Unit returns the probe unit this result belongs to.
func (r ProbeResult) Unit() ProbeUnit {
	return ProbeUnit{Host: r.Host, Port: r.Port}
}

// ServiceGuess names the service likely listening on an open port.
// It is only ever produced for open ports.
type ServiceGuess struct {
	Name        string     `json:"name" bson:"name"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Confidence  Confidence `json:"confidence" bson:"confidence"`
	// Title is extracted from an HTML banner body when present.
	Title string `json:"title,omitempty" bson:"title,omitempty"`
}

// ReportEntry pairs a probe result with its optional service guess.
type ReportEntry struct {
	ProbeResult `bson:",inline"`
	Service     *ServiceGuess `json:"service,omitempty" bson:"service,omitempty"`
}

// ScanReport is the complete, ordered outcome of one scan invocation.
// Entries cover every probe unit exactly once in host-major,
// port-ascending order; len(Entries) == len(Hosts) * len(Ports) always,
// regardless of concurrency, partial failure or cancellation. A report
// is constructed per invocation and never mutated after the scan.
type ScanReport struct {
	HostExpr  string        `json:"host_expr" bson:"host_expr"`
	PortExpr  string        `json:"port_expr" bson:"port_expr"`
	Hosts     []string      `json:"hosts" bson:"hosts"`
	Ports     []int         `json:"ports" bson:"ports"`
	Entries   []ReportEntry `json:"entries" bson:"entries"`
	OpenCount int           `json:"open_count" bson:"open_count"`
}

// OpenEntries returns the entries whose port state is open.
func (r *ScanReport) OpenEntries() []ReportEntry {
	open := make([]ReportEntry, 0, r.OpenCount)
	for _, e := range r.Entries {
		if e.State == StateOpen {
			open = append(open, e)
		}
	}
	return open
}

// ReportDocument wraps a ScanReport for persistence.
type ReportDocument struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ScanID    string             `json:"scan_id" bson:"scan_id"` // uuid
	TaskID    primitive.ObjectID `json:"task_id,omitempty" bson:"task_id,omitempty"`
	Report    ScanReport         `json:"report" bson:"report"`
	StartedAt time.Time          `json:"started_at" bson:"started_at"`
	EndedAt   time.Time          `json:"ended_at" bson:"ended_at"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Collection names for scan data
const (
	CollectionReports = "scan_reports"
)
