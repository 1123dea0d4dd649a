package scanner

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"porthound/models"
)

// InvalidSpecError reports a malformed host or port expression. It is the
// only error the resolver produces and always fires before any network
// activity starts.
type InvalidSpecError struct {
	Spec   string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid spec %q: %s", e.Spec, e.Reason)
}

// ResolveHosts expands a host expression into an ordered list of IPv4
// addresses. Supported forms:
//   - single dotted-quad: "192.168.1.10"
//   - inclusive range over the last octet: "192.168.1.1-192.168.1.50"
//
// Range endpoints must be well-formed addresses sharing the first three
// octets with start <= end.
func ResolveHosts(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &InvalidSpecError{Spec: expr, Reason: "empty host expression"}
	}

	if !strings.Contains(expr, "-") {
		if parseIPv4(expr) == nil {
			return nil, &InvalidSpecError{Spec: expr, Reason: "not a valid IPv4 address"}
		}
		return []string{expr}, nil
	}

	bounds := strings.SplitN(expr, "-", 2)
	start := parseIPv4(strings.TrimSpace(bounds[0]))
	end := parseIPv4(strings.TrimSpace(bounds[1]))
	if start == nil || end == nil {
		return nil, &InvalidSpecError{Spec: expr, Reason: "range endpoints must be valid IPv4 addresses"}
	}
	if start[0] != end[0] || start[1] != end[1] || start[2] != end[2] {
		return nil, &InvalidSpecError{Spec: expr, Reason: "range endpoints may differ only in the last octet"}
	}
	if start[3] > end[3] {
		return nil, &InvalidSpecError{Spec: expr, Reason: "range start greater than end"}
	}

	hosts := make([]string, 0, int(end[3])-int(start[3])+1)
	for last := int(start[3]); last <= int(end[3]); last++ {
		hosts = append(hosts, fmt.Sprintf("%d.%d.%d.%d", start[0], start[1], start[2], last))
	}
	return hosts, nil
}

// ResolvePorts expands a port expression into a strictly ascending,
// deduplicated list of port numbers. Supported forms: "22", "22,80,443",
// "1-1024" and any comma-separated mix; ranges are inclusive with a <= b
// and every value must be in [1, 65535].
func ResolvePorts(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &InvalidSpecError{Spec: expr, Reason: "empty port expression"}
	}

	seen := make(map[int]struct{})
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &InvalidSpecError{Spec: expr, Reason: "empty token in port list"}
		}

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := parsePort(bounds[0])
			if err != nil {
				return nil, &InvalidSpecError{Spec: expr, Reason: err.Error()}
			}
			end, err := parsePort(bounds[1])
			if err != nil {
				return nil, &InvalidSpecError{Spec: expr, Reason: err.Error()}
			}
			if start > end {
				return nil, &InvalidSpecError{Spec: expr, Reason: "range start greater than end: " + part}
			}
			for p := start; p <= end; p++ {
				seen[p] = struct{}{}
			}
			continue
		}

		p, err := parsePort(part)
		if err != nil {
			return nil, &InvalidSpecError{Spec: expr, Reason: err.Error()}
		}
		seen[p] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports, nil
}

// Resolve expands both expressions at once. Any failure aborts before a
// single probe is issued.
func Resolve(hostExpr, portExpr string) (hosts []string, ports []int, err error) {
	hosts, err = ResolveHosts(hostExpr)
	if err != nil {
		return nil, nil, err
	}
	ports, err = ResolvePorts(portExpr)
	if err != nil {
		return nil, nil, err
	}
	return hosts, ports, nil
}

// ExpandUnits produces the probe units in host-major, port-ascending
// order. Cardinality is always len(hosts) * len(ports); the order here
// defines the final report order.
func ExpandUnits(hosts []string, ports []int) []models.ProbeUnit {
	units := make([]models.ProbeUnit, 0, len(hosts)*len(ports))
	for _, h := range hosts {
		for _, p := range ports {
			units = append(units, models.ProbeUnit{Host: h, Port: p})
		}
	}
	return units
}

func parseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	return ip.To4()
}

func parsePort(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a port number: %q", strings.TrimSpace(s))
	}
	if v < 1 || v > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", v)
	}
	return v, nil
}
