package scanner

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"porthound/models"
)

// Default probe timings. Connect timeouts beyond a few seconds only slow
// the scan down without improving accuracy.
const (
	DefaultTimeout       = 1 * time.Second
	DefaultBannerTimeout = 800 * time.Millisecond

	maxBannerBytes = 4096
	maxBannerLen   = 500
)

// ProbeFunc is the signature the scheduler dispatches. It lets tests and
// the engine substitute stub probes for real network I/O.
type ProbeFunc func(host string, port int, wantBanner bool) models.ProbeResult

// Prober performs single TCP connect probes.
type Prober struct {
	Timeout       time.Duration // connect timeout
	BannerTimeout time.Duration // read deadline for the banner grab
}

// NewProber creates a prober, substituting defaults for zero values.
func NewProber(timeout, bannerTimeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if bannerTimeout <= 0 {
		bannerTimeout = DefaultBannerTimeout
	}
	return &Prober{Timeout: timeout, BannerTimeout: bannerTimeout}
}

// Probe attempts one TCP connection to (host, port) and classifies the
// outcome. It never returns an error: every network failure maps to a
// port state. Exactly one socket is opened and closed per invocation and
// there are no retries.
//
// Classification:
//   - connection established          -> open
//   - actively refused (RST)          -> closed
//   - timeout, unreachable, no route,
//     socket exhaustion, anything else -> filtered
func (p *Prober) Probe(host string, port int, wantBanner bool) models.ProbeResult {
	result := models.ProbeResult{Host: host, Port: port}
	start := time.Now()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, p.Timeout)
	if err != nil {
		result.State = classifyDialError(err)
		result.Elapsed = time.Since(start)
		return result
	}
	defer conn.Close()

	result.State = models.StateOpen
	if wantBanner {
		// One best-effort read on the same connection. Services that
		// greet on connect (SSH, FTP, SMTP...) respond here; silence is
		// simply an empty banner, not an error.
		result.Banner = grabBanner(conn, p.BannerTimeout)
	}
	result.Elapsed = time.Since(start)
	return result
}

// classifyDialError maps a dial failure to a port state. Only an active
// refusal means closed; everything else is indistinguishable from a
// firewall drop at the connect level and reports as filtered.
func classifyDialError(err error) models.PortState {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return models.StateClosed
	}
	return models.StateFiltered
}

// grabBanner reads whatever the service volunteers on connect, bounded
// by the banner timeout. No probe bytes are sent.
func grabBanner(conn net.Conn, timeout time.Duration) string {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	buf := make([]byte, maxBannerBytes)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return ""
	}
	return sanitizeBanner(string(buf[:n]))
}

// sanitizeBanner strips non-printable bytes, collapses whitespace and
// truncates oversized banners so results stay safe to log and export.
func sanitizeBanner(banner string) string {
	banner = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, banner)

	banner = strings.Join(strings.Fields(banner), " ")

	if len(banner) > maxBannerLen {
		banner = banner[:maxBannerLen] + "..."
	}
	return strings.TrimSpace(banner)
}
