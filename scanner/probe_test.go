package scanner

import (
	"net"
	"strconv"
	"testing"
	"time"

	"porthound/models"
)

// startListener returns a loopback listener and its port. The accept
// callback runs once per connection.
func startListener(t *testing.T, onAccept func(net.Conn)) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				if onAccept != nil {
					onAccept(c)
				} else {
					time.Sleep(100 * time.Millisecond)
				}
			}(conn)
		}
	}()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return ln, port
}

// closedPort reserves a loopback port and releases it, so a connect to
// it is actively refused.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	ln.Close()
	return port
}

func TestProbe_Open(t *testing.T) {
	_, port := startListener(t, nil)

	p := NewProber(time.Second, 0)
	res := p.Probe("127.0.0.1", port, false)

	if res.State != models.StateOpen {
		t.Fatalf("state = %s, want open", res.State)
	}
	if res.Host != "127.0.0.1" || res.Port != port {
		t.Fatalf("unit mismatch: %s:%d", res.Host, res.Port)
	}
}

func TestProbe_Closed(t *testing.T) {
	port := closedPort(t)

	p := NewProber(time.Second, 0)
	res := p.Probe("127.0.0.1", port, false)

	if res.State != models.StateClosed {
		t.Fatalf("state = %s, want closed", res.State)
	}
}

func TestProbe_Filtered(t *testing.T) {
	// 192.0.2.0/24 (TEST-NET-1) is reserved and never routed; the
	// connect either times out or errors, both of which are filtered.
	p := NewProber(200*time.Millisecond, 0)

	start := time.Now()
	res := p.Probe("192.0.2.1", 80, false)
	elapsed := time.Since(start)

	if res.State != models.StateFiltered {
		t.Fatalf("state = %s, want filtered", res.State)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("probe took %v, should be bounded by the timeout", elapsed)
	}
}

func TestProbe_BannerCaptured(t *testing.T) {
	_, port := startListener(t, func(c net.Conn) {
		c.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
		time.Sleep(50 * time.Millisecond)
	})

	p := NewProber(time.Second, 500*time.Millisecond)
	res := p.Probe("127.0.0.1", port, true)

	if res.State != models.StateOpen {
		t.Fatalf("state = %s, want open", res.State)
	}
	if res.Banner != "SSH-2.0-OpenSSH_9.6" {
		t.Fatalf("banner = %q", res.Banner)
	}
}

func TestProbe_SilentServiceEmptyBanner(t *testing.T) {
	_, port := startListener(t, func(c net.Conn) {
		time.Sleep(600 * time.Millisecond) // say nothing
	})

	p := NewProber(time.Second, 200*time.Millisecond)
	res := p.Probe("127.0.0.1", port, true)

	if res.State != models.StateOpen {
		t.Fatalf("state = %s, want open", res.State)
	}
	if res.Banner != "" {
		t.Fatalf("banner = %q, want empty", res.Banner)
	}
}

func TestSanitizeBanner(t *testing.T) {
	cases := map[string]string{
		"SSH-2.0-OpenSSH\r\n":         "SSH-2.0-OpenSSH",
		"a\x00b\x01c":                 "abc",
		"  spaced\t\tout   words\n":   "spaced out words",
		"line1\r\nline2":              "line1 line2",
	}
	for in, want := range cases {
		if got := sanitizeBanner(in); got != want {
			t.Errorf("sanitizeBanner(%q) = %q, want %q", in, got, want)
		}
	}
}
