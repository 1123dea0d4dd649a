package scanner

import (
	"errors"
	"reflect"
	"testing"

	"porthound/models"
)

func TestResolvePorts_Valid(t *testing.T) {
	cases := map[string][]int{
		"22":          {22},
		"22,80":       {22, 80},
		"80,22":       {22, 80},
		"1-3":         {1, 2, 3},
		"80,22,80-82": {22, 80, 81, 82},
		" 22 , 443 ":  {22, 443},
		"1-3,2-5":     {1, 2, 3, 4, 5},
		"65535":       {65535},
	}
	for expr, want := range cases {
		t.Run(expr, func(t *testing.T) {
			got, err := ResolvePorts(expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("got %v want %v", got, want)
			}
		})
	}
}

func TestResolvePorts_Invalid(t *testing.T) {
	cases := []string{
		"",
		"0",
		"65536",
		"10-1",
		"abc",
		"22,",
		"1-70000",
		"-80",
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			_, err := ResolvePorts(expr)
			if err == nil {
				t.Fatalf("expected error for %q", expr)
			}
			var specErr *InvalidSpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("expected *InvalidSpecError, got %T", err)
			}
		})
	}
}

func TestResolveHosts_Single(t *testing.T) {
	hosts, err := ResolveHosts("192.168.1.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(hosts, []string{"192.168.1.10"}) {
		t.Fatalf("got %v", hosts)
	}
}

func TestResolveHosts_Range(t *testing.T) {
	hosts, err := ResolveHosts("10.0.0.5-10.0.0.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"10.0.0.5", "10.0.0.6", "10.0.0.7", "10.0.0.8", "10.0.0.9"}
	if !reflect.DeepEqual(hosts, want) {
		t.Fatalf("got %v want %v", hosts, want)
	}
}

func TestResolveHosts_RangeSize(t *testing.T) {
	// |A-B| == B-A+1 for any valid last-octet range.
	hosts, err := ResolveHosts("192.168.1.1-192.168.1.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hosts) != 50 {
		t.Fatalf("got %d hosts, want 50", len(hosts))
	}
	if hosts[0] != "192.168.1.1" || hosts[49] != "192.168.1.50" {
		t.Fatalf("bad endpoints: %s .. %s", hosts[0], hosts[49])
	}
}

func TestResolveHosts_Invalid(t *testing.T) {
	cases := []string{
		"",
		"not-an-ip",
		"256.1.1.1",
		"192.168.1.10-192.168.2.20", // differs above last octet
		"192.168.1.20-192.168.1.10", // reversed
		"192.168.1.1-banana",
		"192.168.1",
	}
	for _, expr := range cases {
		t.Run(expr, func(t *testing.T) {
			_, err := ResolveHosts(expr)
			if err == nil {
				t.Fatalf("expected error for %q", expr)
			}
			var specErr *InvalidSpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("expected *InvalidSpecError, got %T", err)
			}
		})
	}
}

func TestExpandUnits_HostMajorOrder(t *testing.T) {
	hosts := []string{"10.0.0.1", "10.0.0.2"}
	ports := []int{22, 80}

	units := ExpandUnits(hosts, ports)

	want := []models.ProbeUnit{
		{Host: "10.0.0.1", Port: 22},
		{Host: "10.0.0.1", Port: 80},
		{Host: "10.0.0.2", Port: 22},
		{Host: "10.0.0.2", Port: 80},
	}
	if !reflect.DeepEqual(units, want) {
		t.Fatalf("got %v want %v", units, want)
	}
}

func TestResolve_FailsFast(t *testing.T) {
	if _, _, err := Resolve("bad", "80"); err == nil {
		t.Fatal("expected host error")
	}
	if _, _, err := Resolve("127.0.0.1", "bad"); err == nil {
		t.Fatal("expected port error")
	}
}
