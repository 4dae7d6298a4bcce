package extract

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ppiankov/clausula/internal/model"
)

// checkAmount fails unless res holds want in the given currency
func checkAmount(t *testing.T, res AmountResult, want int64, currency model.Currency) {
	t.Helper()
	if res.Amount == nil {
		t.Fatalf("Expected amount %d, got nil", want)
	}
	if !res.Amount.Equal(decimal.NewFromInt(want)) {
		t.Errorf("Expected amount %d, got %s", want, res.Amount)
	}
	if res.Currency != currency {
		t.Errorf("Expected currency %s, got %s", currency, res.Currency)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"650.000,00", "650000"},
		{"650,000.00", "650000"},
		{"650000", "650000"},
		{"650.000", "650000"},
		{"650,000", "650000"},
		{"1.300.000", "1300000"},
		{"1,300,000", "1300000"},
		{"1.234,5", "1234.5"},
		{"99,99", "99.99"},
		{"1500.50", "1500.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			if !ok {
				t.Fatalf("Expected %q to parse", tt.in)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	if _, ok := ParseAmount(" ., "); ok {
		t.Error("Expected separators alone to be rejected")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		window string
		want   int
	}{
		{"El canon locativo asciende a $650.000", 10},
		{"en caso de mora, multa de $50.000", 4},
		{"depósito en garantía equivalente a un mes de alquiler, $650.000", 4},
		{"DEPOSITO DE GARANTIA: alquiler $100", 4},
	}

	for _, tt := range tests {
		if got := Score(tt.window); got != tt.want {
			t.Errorf("Score(%q): expected %d, got %d", tt.window, tt.want, got)
		}
	}
}

func TestAmountResolver_IgnoresFineAfterRent(t *testing.T) {
	text := "El canon locativo asciende a $650.000 mensuales. En caso de mora, multa de $50.000 por día."
	res := NewAmountResolver().Resolve(text)

	checkAmount(t, res, 650000, model.CurrencyARS)
	if res.Source != "canon locativo" {
		t.Errorf("Expected source 'canon locativo', got '%s'", res.Source)
	}
}

func TestAmountResolver_PrefersRentOverDeposit(t *testing.T) {
	resolver := NewAmountResolver()
	text := "En concepto de depósito en garantía, equivalente a dos meses de alquiler, el LOCATARIO entrega $1.300.000. " +
		"El canon locativo mensual es de $650.000."

	cands := resolver.Candidates(text)
	if len(cands) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(cands))
	}
	if cands[0].Score != 4 || cands[1].Score != 10 {
		t.Errorf("Expected scores 4 and 10, got %d and %d", cands[0].Score, cands[1].Score)
	}

	checkAmount(t, resolver.Resolve(text), 650000, model.CurrencyARS)
}

func TestAmountResolver_TiesByDocumentOrder(t *testing.T) {
	res := NewAmountResolver().Resolve("El alquiler es $100.000. El valor mensual es $200.000.")
	checkAmount(t, res, 100000, model.CurrencyARS)
}

func TestAmountResolver_Currencies(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     int64
		currency model.Currency
	}{
		{
			name:     "dollar prefix",
			text:     "El precio mensual de la locación se fija en U$S 500 (dólares estadounidenses quinientos).",
			want:     500,
			currency: model.CurrencyUSD,
		},
		{
			name:     "dollar suffix",
			text:     "Alquiler mensual: 650 USD.",
			want:     650,
			currency: model.CurrencyUSD,
		},
		{
			name:     "dollar sign after the word dólares",
			text:     "El alquiler será de dólares estadounidenses $1.200 por mes.",
			want:     1200,
			currency: model.CurrencyUSD,
		},
		{
			name:     "pesos with a parenthesized figure",
			text:     "El canon locativo será de pesos seiscientos cincuenta mil ($650.000,00) por mes.",
			want:     650000,
			currency: model.CurrencyARS,
		},
	}

	resolver := NewAmountResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkAmount(t, resolver.Resolve(tt.text), tt.want, tt.currency)
		})
	}
}

func TestAmountResolver_NoUnanchoredFallback(t *testing.T) {
	res := NewAmountResolver().Resolve("Se entrega un depósito de $100.000 al firmar.")

	if res.Amount != nil {
		t.Errorf("Expected no amount, got %s", res.Amount)
	}
	if res.Currency != model.CurrencyARS {
		t.Errorf("Expected currency %s, got %s", model.CurrencyARS, res.Currency)
	}
}
