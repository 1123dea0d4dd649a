package scanner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"porthound/config"
	"porthound/models"
)

// Identifier resolves service names for open ports from the static
// port table and, when a banner was captured, from greeting signatures.
// Pure lookup and matching: it performs no I/O.
type Identifier struct {
	table      map[int]config.ServiceEntry
	signatures []config.BannerSignature
}

// NewIdentifier creates an identifier over the given service database.
func NewIdentifier(db *config.ServiceDB) *Identifier {
	return &Identifier{table: db.Ports, signatures: db.Signatures}
}

// Identify resolves the service likely listening on an open port.
// The table supplies the baseline name; a non-empty banner is matched
// against the signature list and a signature hit overrides the table
// name. A port matching neither reports as unknown, which is a
// legitimate outcome rather than an error.
func (id *Identifier) Identify(port int, banner string) models.ServiceGuess {
	guess := models.ServiceGuess{Name: "unknown", Confidence: models.ConfidenceUnknown}

	if entry, ok := id.table[port]; ok {
		guess.Name = entry.Name
		guess.Description = entry.Description
		guess.Confidence = models.ConfidenceTable
	}

	if banner != "" {
		if name, ok := id.matchBanner(banner); ok {
			if name != guess.Name {
				guess.Description = ""
			}
			guess.Name = name
			guess.Confidence = models.ConfidenceBanner
		}
		if title := htmlTitle(banner); title != "" {
			guess.Title = title
		}
	}

	return guess
}

// matchBanner walks the signature list in order and returns the first
// matching service name. Prefix checks are exact; Contains checks are
// case-insensitive; a signature carrying both requires both.
func (id *Identifier) matchBanner(banner string) (string, bool) {
	lower := strings.ToLower(banner)
	for _, sig := range id.signatures {
		if sig.Prefix != "" && !strings.HasPrefix(banner, sig.Prefix) {
			continue
		}
		if sig.Contains != "" && !strings.Contains(lower, strings.ToLower(sig.Contains)) {
			continue
		}
		if sig.Prefix == "" && sig.Contains == "" {
			continue
		}
		return sig.Name, true
	}
	return "", false
}

// htmlTitle pulls the <title> out of an HTTP banner that happens to
// carry an HTML body. It only inspects bytes already captured; no
// further requests are made.
func htmlTitle(banner string) string {
	idx := strings.Index(strings.ToLower(banner), "<html")
	if idx < 0 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(banner[idx:]))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
