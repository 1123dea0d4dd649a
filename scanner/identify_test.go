package scanner

import (
	"testing"

	"porthound/config"
	"porthound/models"
)

func testIdentifier() *Identifier {
	return NewIdentifier(&config.ServiceDB{
		Ports: map[int]config.ServiceEntry{
			22:  {Name: "SSH", Description: "Secure Shell"},
			80:  {Name: "HTTP", Description: "Hypertext Transfer Protocol"},
			443: {Name: "HTTPS", Description: "HTTP Secure"},
		},
		Signatures: []config.BannerSignature{
			{Prefix: "SSH-", Name: "SSH"},
			{Prefix: "220 ", Contains: "smtp", Name: "SMTP"},
			{Prefix: "220 ", Name: "FTP"},
			{Prefix: "HTTP/", Name: "HTTP"},
			{Contains: "<html", Name: "HTTP"},
		},
	})
}

func TestIdentify_TableLookup(t *testing.T) {
	id := testIdentifier()

	guess := id.Identify(22, "")
	if guess.Name != "SSH" || guess.Confidence != models.ConfidenceTable {
		t.Fatalf("got (%s, %s), want (SSH, table_lookup)", guess.Name, guess.Confidence)
	}
	if guess.Description != "Secure Shell" {
		t.Fatalf("description = %q", guess.Description)
	}
}

func TestIdentify_UnknownPortNoBanner(t *testing.T) {
	id := testIdentifier()

	guess := id.Identify(9999, "")
	if guess.Name != "unknown" || guess.Confidence != models.ConfidenceUnknown {
		t.Fatalf("got (%s, %s), want (unknown, unknown)", guess.Name, guess.Confidence)
	}
}

func TestIdentify_BannerOnUnlistedPort(t *testing.T) {
	id := testIdentifier()

	guess := id.Identify(9999, "SSH-2.0-OpenSSH")
	if guess.Name != "SSH" || guess.Confidence != models.ConfidenceBanner {
		t.Fatalf("got (%s, %s), want (SSH, banner_match)", guess.Name, guess.Confidence)
	}
}

func TestIdentify_BannerOverridesTable(t *testing.T) {
	id := testIdentifier()

	// Something speaking SSH on 443: the banner signature wins.
	guess := id.Identify(443, "SSH-2.0-dropbear")
	if guess.Name != "SSH" || guess.Confidence != models.ConfidenceBanner {
		t.Fatalf("got (%s, %s), want (SSH, banner_match)", guess.Name, guess.Confidence)
	}
	if guess.Description != "" {
		t.Fatalf("stale table description kept: %q", guess.Description)
	}
}

func TestIdentify_BannerConfirmsTable(t *testing.T) {
	id := testIdentifier()

	guess := id.Identify(80, "HTTP/1.1 200 OK Server: nginx")
	if guess.Name != "HTTP" || guess.Confidence != models.ConfidenceBanner {
		t.Fatalf("got (%s, %s), want (HTTP, banner_match)", guess.Name, guess.Confidence)
	}
	// Name unchanged, so the table description survives.
	if guess.Description != "Hypertext Transfer Protocol" {
		t.Fatalf("description = %q", guess.Description)
	}
}

func TestIdentify_FTPVsSMTPGreeting(t *testing.T) {
	id := testIdentifier()

	if g := id.Identify(2121, "220 ProFTPD Server ready"); g.Name != "FTP" {
		t.Fatalf("ftp greeting identified as %s", g.Name)
	}
	if g := id.Identify(2525, "220 mail.example.com ESMTP Postfix"); g.Name != "SMTP" {
		t.Fatalf("smtp greeting identified as %s", g.Name)
	}
}

func TestIdentify_HTMLTitleExtracted(t *testing.T) {
	id := testIdentifier()

	banner := "HTTP/1.1 200 OK Content-Type: text/html <html><head><title>Router Admin</title></head><body></body></html>"
	guess := id.Identify(8080, banner)

	if guess.Name != "HTTP" || guess.Confidence != models.ConfidenceBanner {
		t.Fatalf("got (%s, %s)", guess.Name, guess.Confidence)
	}
	if guess.Title != "Router Admin" {
		t.Fatalf("title = %q, want %q", guess.Title, "Router Admin")
	}
}

func TestIdentify_DefaultServiceDB(t *testing.T) {
	id := NewIdentifier(config.LoadServiceDB("testdata/does-not-exist.yaml"))

	if g := id.Identify(22, ""); g.Name != "SSH" {
		t.Fatalf("default table missing SSH on 22, got %s", g.Name)
	}
	if g := id.Identify(9999, "SSH-2.0-OpenSSH"); g.Confidence != models.ConfidenceBanner {
		t.Fatalf("default signatures missed SSH banner, got %s", g.Confidence)
	}
}
