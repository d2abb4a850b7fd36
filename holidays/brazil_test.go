package holidays_test

import (
	"testing"

	"github.com/escala/rotation-engine/holidays"
)

func TestEaster_KnownYears(t *testing.T) {
	cases := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2000: "2000-04-23",
	}
	for year, want := range cases {
		if got := holidays.Easter(year).String(); got != want {
			t.Errorf("Easter(%d): got %s, want %s", year, got, want)
		}
	}
}

func TestBrazilian_Catalog2024(t *testing.T) {
	// GIVEN: The 2024 catalog
	// THEN: 13 holidays, sorted, with the moveable feasts on their known dates

	catalog := holidays.Brazilian(2024)
	if len(catalog) != 13 {
		t.Fatalf("expected 13 holidays, got %d", len(catalog))
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i].Date.Before(catalog[i-1].Date) {
			t.Fatalf("catalog out of order at %d", i)
		}
	}

	byDate := make(map[string]string, len(catalog))
	for _, c := range catalog {
		byDate[c.Date.String()] = c.Name
	}

	want := map[string]string{
		"2024-01-01": "Ano Novo",
		"2024-02-12": "Carnaval",
		"2024-02-13": "Carnaval",
		"2024-03-29": "Sexta-Feira Santa",
		"2024-03-31": "Páscoa",
		"2024-04-21": "Tiradentes",
		"2024-05-01": "Dia do Trabalho",
		"2024-05-30": "Corpus Christi",
		"2024-09-07": "Independência do Brasil",
		"2024-10-12": "Nossa Sra. Aparecida",
		"2024-11-02": "Finados",
		"2024-11-15": "Proclamação da República",
		"2024-12-25": "Natal",
	}
	for date, name := range want {
		if byDate[date] != name {
			t.Errorf("%s: got %q, want %q", date, byDate[date], name)
		}
	}
}

func TestBrazilian_Reproducible(t *testing.T) {
	a := holidays.Brazilian(2025)
	b := holidays.Brazilian(2025)
	if len(a) != len(b) {
		t.Fatalf("lengths differ")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("catalog differs at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}
