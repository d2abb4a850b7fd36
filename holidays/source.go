/*
source.go - Municipal holiday lookup boundary

PURPOSE:
  State and municipal holidays cannot be computed; they come from an
  external lookup service. The engine only depends on the MunicipalSource
  interface - a function of (year, state, city) producing candidates - so
  the concrete client below is replaceable and tests can stub it.

CALENDARIO CLIENT:
  calendario.com.br serves an XML event feed obfuscated as XOR-masked
  base64. The client decodes the payload, walks the <event> elements and
  keeps type codes 2 (state) and 3 (municipal), converting the DD/MM/YYYY
  dates to civil dates. City names are matched accent-insensitively by the
  service, so the query strips diacritics and upper-cases.

  A malformed or empty feed degrades to an empty candidate list; only
  transport-level failures surface as errors.
*/
package holidays

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/escala/rotation-engine/rotation"
)

// MunicipalSource produces holiday candidates for a (year, state, city)
// triple. state is the two-letter code (see BrazilianStates).
type MunicipalSource interface {
	Fetch(ctx context.Context, year int, state, city string) ([]Candidate, error)
}

// =============================================================================
// CALENDARIO.COM.BR CLIENT
// =============================================================================

const (
	calendarioBaseURL = "https://calendario.com.br/api/data.php"
	calendarioXORKey  = "AFDsa%1!!2341R%#!$$"
)

// CalendarioSource fetches municipal holidays from calendario.com.br.
type CalendarioSource struct {
	BaseURL string
	Client  *http.Client
}

// NewCalendarioSource returns a source with a sane request timeout.
func NewCalendarioSource() *CalendarioSource {
	return &CalendarioSource{
		BaseURL: calendarioBaseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements MunicipalSource.
func (s *CalendarioSource) Fetch(ctx context.Context, year int, state, city string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("ano", fmt.Sprintf("%d", year))
	q.Set("estado", state)
	q.Set("cidade", NormalizeCity(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("municipal holiday lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("municipal holiday lookup: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("municipal holiday lookup: %w", err)
	}

	feed, err := DecodeFeed(body)
	if err != nil {
		// Garbage from the service is "no holidays found", not a failure.
		return nil, nil
	}
	return ParseFeed(feed), nil
}

// DecodeFeed unmasks the base64 + XOR obfuscation and returns the XML text.
func DecodeFeed(payload []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	key := []byte(calendarioXORKey)
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = b ^ key[i%len(key)]
	}
	return out, nil
}

// ParseFeed extracts state and municipal holidays (type codes 2 and 3)
// from the decoded XML event feed. Unparseable events are skipped.
func ParseFeed(feed []byte) []Candidate {
	type xmlEvent struct {
		Date     string `xml:"date"`
		Name     string `xml:"name"`
		TypeCode int    `xml:"type_code"`
	}

	var candidates []Candidate
	dec := xml.NewDecoder(bytes.NewReader(feed))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "event" {
			continue
		}

		var ev xmlEvent
		if err := dec.DecodeElement(&ev, &start); err != nil {
			continue
		}
		if ev.TypeCode != 2 && ev.TypeCode != 3 {
			continue
		}
		t, err := time.Parse("02/01/2006", strings.TrimSpace(ev.Date))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(ev.Name)
		if name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Date: rotation.NewDate(t.Year(), t.Month(), t.Day()),
			Name: name,
		})
	}
	return candidates
}

// NormalizeCity strips diacritics and upper-cases a city name the way the
// lookup service expects ("São Paulo" -> "SAO PAULO").
func NormalizeCity(city string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		city,
	)
	if err != nil {
		stripped = city
	}
	return strings.ToUpper(stripped)
}
