package extract

import (
	"testing"

	"github.com/ppiankov/clausula/internal/model"
)

func TestAdjustmentClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		currency model.Currency
		want     model.Adjustment
	}{
		{
			// IPC cited without a period is read as quarterly
			name:     "index without period",
			text:     "el alquiler se ajustará conforme al IPC",
			currency: model.CurrencyARS,
			want:     model.IPCQuarterly(),
		},
		{
			name:     "quarterly cue despite a monthly rent",
			text:     "El canon mensual se actualizará trimestralmente según el IPC publicado por el INDEC.",
			currency: model.CurrencyARS,
			want:     model.IPCQuarterly(),
		},
		{
			name:     "every three months",
			text:     "Ajuste cada tres (3) meses por I.P.C.",
			currency: model.CurrencyARS,
			want:     model.IPCQuarterly(),
		},
		{
			name:     "monthly cue",
			text:     "El precio se actualizará mensualmente según el Índice de Precios al Consumidor.",
			currency: model.CurrencyARS,
			want:     model.IPCMonthly(),
		},
		{
			name:     "dollar contract",
			text:     "se ajustará conforme al IPC trimestralmente",
			currency: model.CurrencyUSD,
			want:     model.NoAdjustment(),
		},
		{
			name:     "period without index",
			text:     "el alquiler se ajustará trimestralmente",
			currency: model.CurrencyARS,
			want:     model.NoAdjustment(),
		},
		{
			name:     "IPC-like letters inside words",
			text:     "el principal obligado",
			currency: model.CurrencyARS,
			want:     model.NoAdjustment(),
		},
	}

	classifier := NewAdjustmentClassifier(3)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.text, tt.currency); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAdjustmentClassifier_ConfiguredDefault(t *testing.T) {
	got := NewAdjustmentClassifier(1).Classify("se ajustará conforme al IPC", model.CurrencyARS)
	if got != model.IPCMonthly() {
		t.Errorf("Expected monthly default, got %+v", got)
	}
}
