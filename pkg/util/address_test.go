package util

import (
	"testing"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

func TestMaskCEP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "digits only", in: "01310100", want: "01310-100"},
		{name: "already masked", in: "01310-100", want: "01310-100"},
		{name: "dots and spaces", in: " 01.310 100 ", want: "01310-100"},
		{name: "too short stays untouched", in: "0131010", want: "0131010"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskCEP(tt.in); got != tt.want {
				t.Errorf("MaskCEP(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "mobile", in: "11987654321", want: "(11) 98765-4321"},
		{name: "landline", in: "1133334444", want: "(11) 3333-4444"},
		{name: "masked mobile", in: "(11) 98765-4321", want: "(11) 98765-4321"},
		{name: "unknown length", in: " 12345 ", want: "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskPhone(tt.in); got != tt.want {
				t.Errorf("MaskPhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "SÃO PAULO", want: "São paulo"},
		{in: "são paulo", want: "São paulo"},
		{in: "  campinas  ", want: "Campinas"},
		{in: "ÉVORA", want: "Évora"},
		{in: "", want: NotInformed},
		{in: "   ", want: NotInformed},
	}
	for _, tt := range tests {
		if got := NormalizeCity(tt.in); got != tt.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLabel(t *testing.T) {
	if got := NormalizeLabel("  Ana   Souza ", NotInformed); got != "Ana Souza" {
		t.Errorf("unexpected label %q", got)
	}
	if got := NormalizeLabel("\t", NotInformed); got != NotInformed {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestCleanAddress(t *testing.T) {
	got := CleanAddress(model.Address{
		CEP:    "13010000",
		Rua:    "Rua   Barão de Jaguara ",
		Cidade: " Campinas",
		Estado: "sp",
	})
	want := model.Address{
		CEP:    "13010-000",
		Rua:    "Rua Barão de Jaguara",
		Cidade: "Campinas",
		Estado: "SP",
	}
	if got != want {
		t.Errorf("CleanAddress() = %+v, want %+v", got, want)
	}
}

func TestNeedsCleanup(t *testing.T) {
	clean := model.Visitor{Telefone: "(11) 98765-4321", Endereco: model.Address{CEP: "13010-000", Estado: "SP"}}
	if NeedsCleanup(clean) {
		t.Errorf("expected clean visitor to need no cleanup")
	}
	dirty := model.Visitor{Telefone: "11987654321"}
	if !NeedsCleanup(dirty) {
		t.Errorf("expected unmasked phone to need cleanup")
	}
}

func TestHashVisitorsChangesWithContent(t *testing.T) {
	a := []model.Visitor{{ID: "1", Sexo: "Feminino"}}
	b := []model.Visitor{{ID: "1", Sexo: "Masculino"}}
	if HashVisitors(a) == HashVisitors(b) {
		t.Fatalf("expected different hashes")
	}
	if HashVisitors(a) != HashVisitors([]model.Visitor{{ID: "1", Sexo: "Feminino"}}) {
		t.Fatalf("expected equal hashes for equal content")
	}
}

func TestHashVisitorsSeparatorInsideField(t *testing.T) {
	a := []model.Visitor{{ID: "1", GFResponsavel: "GF A|", Endereco: model.Address{Cidade: "Campinas"}}}
	b := []model.Visitor{{ID: "1", GFResponsavel: "GF A", Endereco: model.Address{Cidade: "|Campinas"}}}
	if HashVisitors(a) == HashVisitors(b) {
		t.Fatalf("expected different hashes when a separator moves between fields")
	}
	c := []model.Visitor{{ID: "1\n"}, {ID: "2"}}
	d := []model.Visitor{{ID: "1"}, {ID: "\n2"}}
	if HashVisitors(c) == HashVisitors(d) {
		t.Fatalf("expected different hashes across record boundaries")
	}
}
