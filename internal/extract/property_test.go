package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPropertyLocator_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		source string
	}{
		{
			name: "object of the contract",
			text: "PRIMERA: OBJETO. EL LOCADOR da en locación a EL LOCATARIO el inmueble ubicado en " +
				"la calle Corrientes 1234, piso 3, depto. B, de esta ciudad, para ser destinado a vivienda.",
			want:   "calle Corrientes 1234, piso 3, depto. B",
			source: PropertySourceObject,
		},
		{
			name:   "numbered functional unit",
			text:   "Se alquila la unidad funcional N° 12 ubicada en Avenida Rivadavia 5400, CABA; la misma se entrega desocupada.",
			want:   "Avenida Rivadavia 5400, CABA",
			source: PropertySourceObject,
		},
		{
			name: "party domicile earlier in the text",
			text: "María Gómez, con domicilio real sito en la calle Falsa 123 de esta ciudad, en adelante LA LOCATARIA. " +
				strings.Repeat("Las partes acuerdan las siguientes cláusulas. ", 3) +
				"El departamento situado en Avenida Santa Fe 2500, CABA. Será destinado a vivienda.",
			want:   "Avenida Santa Fe 2500, CABA",
			source: PropertySourceLocated,
		},
		{
			name: "party domicile ending the previous sentence",
			text: "LOCADOR: Juan Pérez, DNI 20.111.222. LOCATARIA: María Gómez, DNI 30.333.444, con domicilio en Rivadavia 100.\n" +
				"PRIMERA: El inmueble ubicado en la calle Paraná 500, CABA, destinado a vivienda.",
			want:   "calle Paraná 500, CABA",
			source: PropertySourceLocated,
		},
		{
			name:   "use clause after the address",
			text:   "El inmueble ubicado en la calle Paraná 500, CABA, se destina a vivienda familiar.",
			want:   "calle Paraná 500, CABA",
			source: PropertySourceLocated,
		},
		{
			name:   "bare street clause",
			text:   "El objeto de este acuerdo es el bien ubicado en la calle Lavalle 900; las partes lo conocen.",
			want:   "calle Lavalle 900",
			source: PropertySourceStreet,
		},
		{
			name:   "address heading",
			text:   "AV. FEDERICO LACROZE 3060 9° \"F\" - CABA\nCONTRATO DE LOCACIÓN\n\nLas partes convienen lo siguiente.",
			want:   `AV. FEDERICO LACROZE 3060 9° "F" - CABA`,
			source: PropertySourceHeader,
		},
	}

	locator := NewPropertyLocator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, source := locator.Resolve(tt.text)
			if label == nil {
				t.Fatalf("Expected %q, got nil", tt.want)
			}
			if *label != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, *label)
			}
			if source != tt.source {
				t.Errorf("Expected source %s, got %s", tt.source, source)
			}
		})
	}
}

func TestPropertyLocator_CapsLongLabels(t *testing.T) {
	text := "El inmueble ubicado en calle " + strings.Repeat("Larga ", 60) + "100"
	label, _ := NewPropertyLocator().Resolve(text)
	if label == nil {
		t.Fatal("Expected a label, got nil")
	}
	if n := utf8.RuneCountInString(*label); n > 160 {
		t.Errorf("Expected at most 160 runes, got %d", n)
	}
}

func TestPropertyLocator_NoAddress(t *testing.T) {
	label, source := NewPropertyLocator().Resolve("Las partes acuerdan lo siguiente.")
	if label != nil || source != "" {
		t.Errorf("Expected no label, got %v (%s)", label, source)
	}
}

func TestCutSentence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Av. Santa Fe 1.234. Luego", "Av. Santa Fe 1.234"},
		{"Rivadavia 100, C.A.B.A. Las partes", "Rivadavia 100, C.A.B.A"},
		{"Lavalle 900, piso 2. El plazo", "Lavalle 900, piso 2"},
	}

	for _, tt := range tests {
		if got := cutSentence(tt.in); got != tt.want {
			t.Errorf("cutSentence(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
