package extract_test

import (
	"math"
	"strings"
	"testing"

	"propiedades/internal/domain"
	"propiedades/internal/extract"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestNormalizePrice_RoundTrip(t *testing.T) {
	opts := extract.DefaultOptions()
	values := []float64{1_000, 8_500, 12_345.67, 500_000, 2_500_000, 13_750_000, 99_999_999}
	for _, c := range []domain.Currency{domain.CurrencyMXN, domain.CurrencyUSD, domain.CurrencyEUR} {
		for _, v := range values {
			s := extract.FormatPrice(v, c)
			p := extract.NormalizePrice(s, domain.OperationUnknown, opts)
			if p.Value == nil || !approx(*p.Value, v) {
				t.Fatalf("round trip %v %s via %q: got %+v", v, c, s, p.Value)
			}
			if p.Currency != c {
				t.Fatalf("currency for %q: got %s want %s", s, p.Currency, c)
			}
		}
	}
}

func TestNormalizePrice_SaleRangeIsInclusive(t *testing.T) {
	opts := extract.DefaultOptions()
	cases := map[string]bool{
		"$499,999":     false,
		"$500,000":     true,
		"$50,000,000":  true,
		"$50,000,001":  false,
		"$2,500,000":   true,
		"$120,000,000": false,
	}
	for raw, want := range cases {
		p := extract.NormalizePrice(raw, domain.OperationSale, opts)
		if p.IsValid != want {
			t.Fatalf("%s: is_valid=%v want %v (msg=%v)", raw, p.IsValid, want, deref(p.Message))
		}
	}
}

func TestNormalizePrice_Idempotent(t *testing.T) {
	opts := extract.DefaultOptions()
	for _, raw := range []string{"$ 2,500,000 MXN", "1.200.000", "3.5 millones", "850 mil", "US$150,000", "$8,500/mes"} {
		first := extract.NormalizePrice(raw, domain.OperationUnknown, opts)
		second := extract.NormalizePrice(first.Text, domain.OperationUnknown, opts)
		if first.Value == nil || second.Value == nil || *first.Value != *second.Value {
			t.Fatalf("%q not idempotent: %v vs %v", raw, first.Value, second.Value)
		}
	}
}

func TestNormalizePrice_SeparatorsAndMultipliers(t *testing.T) {
	opts := extract.DefaultOptions()
	cases := []struct {
		raw  string
		want float64
	}{
		{"$1,200,000", 1_200_000},
		{"1.200.000", 1_200_000},
		{"$8,500", 8_500},
		{"8.500", 8_500},
		{"$1.200,50", 1_200.50},
		{"$1,200.50", 1_200.50},
		{"2.5 millones", 2_500_000},
		{"1.250 millones", 1_250_000},
		{"$3.5M", 3_500_000},
		{"850 mil", 850_000},
		{"15k", 15_000},
		{"4 mdp", 4_000_000},
		{"$ 950,000.00 pesos", 950_000},
	}
	for _, tc := range cases {
		p := extract.NormalizePrice(tc.raw, domain.OperationUnknown, opts)
		if p.Value == nil || !approx(*p.Value, tc.want) {
			t.Fatalf("%q: got %v want %v", tc.raw, p.Value, tc.want)
		}
	}
}

func TestNormalizePrice_Confidence(t *testing.T) {
	opts := extract.DefaultOptions()

	p := extract.NormalizePrice("$2,500,000", domain.OperationSale, opts)
	if !p.IsValid || !approx(p.Confidence, 0.882) {
		t.Fatalf("optimal hundred-thousands: %+v", p)
	}
	if p.Message == nil || !strings.Contains(*p.Message, "round number") {
		t.Fatalf("expected round-number note, got %v", deref(p.Message))
	}

	p = extract.NormalizePrice("$35,250,000", domain.OperationSale, opts)
	if !p.IsValid || !approx(p.Confidence, 0.7*0.99) {
		t.Fatalf("outside optimal band: %+v", p)
	}

	p = extract.NormalizePrice("$8,750", domain.OperationRent, opts)
	if !p.IsValid || !approx(p.Confidence, 0.9) || p.Message != nil {
		t.Fatalf("clean rent price: %+v", p)
	}

	p = extract.NormalizePrice("$2,500,000", domain.OperationRent, opts)
	if p.IsValid || p.Confidence != 0.2 {
		t.Fatalf("sale-size price as rent should be invalid: %+v", p)
	}
}

func TestNormalizePrice_UnknownOperationIsProvisional(t *testing.T) {
	p := extract.NormalizePrice("$5,000", domain.OperationUnknown, extract.DefaultOptions())
	if !p.IsValid || p.Message == nil || !strings.Contains(*p.Message, "range not checked") {
		t.Fatalf("unexpected: %+v", p)
	}
}

func TestNormalizePrice_Rejects(t *testing.T) {
	opts := extract.DefaultOptions()
	for _, raw := range []string{"", "a tratar", "$0", "$150,000,000"} {
		p := extract.NormalizePrice(raw, domain.OperationSale, opts)
		if p.IsValid || p.Confidence != 0 {
			t.Fatalf("%q should be rejected: %+v", raw, p)
		}
	}
}

func TestNormalizePrice_ForeignCurrencyRangeUsesRate(t *testing.T) {
	opts := extract.DefaultOptions()
	p := extract.NormalizePrice("US$150,000", domain.OperationSale, opts)
	if p.Currency != domain.CurrencyUSD || !p.IsValid {
		t.Fatalf("usd sale: %+v", p)
	}
	if *p.Value != 150_000 {
		t.Fatalf("value must stay in source currency, got %v", *p.Value)
	}
	p = extract.NormalizePrice("20,000 euros", domain.OperationSale, opts)
	if p.Currency != domain.CurrencyEUR || p.IsValid {
		t.Fatalf("eur below sale floor after conversion: %+v", p)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := extract.FormatPrice(2_500_000, domain.CurrencyMXN); got != "$2,500,000" {
		t.Fatalf("got %q", got)
	}
	if got := extract.FormatPrice(1_500.5, domain.CurrencyUSD); got != "$1,500.50 USD" {
		t.Fatalf("got %q", got)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
