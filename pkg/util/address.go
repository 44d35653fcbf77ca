package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

// NotInformed is the fallback label for missing free-text fields.
const NotInformed = "Não informado"

var (
	multiSpacePattern = regexp.MustCompile(`\s+`)
	lowerPT           = cases.Lower(language.BrazilianPortuguese)
	upperPT           = cases.Upper(language.BrazilianPortuguese)
)

// CleanAddress trims and collapses whitespace in every field and masks the CEP.
func CleanAddress(addr model.Address) model.Address {
	return model.Address{
		CEP:         MaskCEP(addr.CEP),
		Rua:         cleanField(addr.Rua),
		Numero:      cleanField(addr.Numero),
		Complemento: cleanField(addr.Complemento),
		Bairro:      cleanField(addr.Bairro),
		Cidade:      cleanField(addr.Cidade),
		Estado:      upperPT.String(cleanField(addr.Estado)),
	}
}

// NeedsCleanup reports whether an address or phone would change after cleaning.
func NeedsCleanup(v model.Visitor) bool {
	if CleanAddress(v.Endereco) != v.Endereco {
		return true
	}
	return MaskPhone(v.Telefone) != v.Telefone
}

// OnlyDigits strips every non-digit rune.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCEP formats an 8 digit postal code as 00000-000.
// Input that does not carry exactly 8 digits is returned trimmed and untouched.
func MaskCEP(s string) string {
	d := OnlyDigits(s)
	if len(d) != 8 {
		return strings.TrimSpace(s)
	}
	return d[:5] + "-" + d[5:]
}

// MaskPhone formats Brazilian landline (10 digits) and mobile (11 digits) numbers
// as (00) 0000-0000 and (00) 00000-0000.
func MaskPhone(s string) string {
	d := OnlyDigits(s)
	switch len(d) {
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	default:
		return strings.TrimSpace(s)
	}
}

// NormalizeCity upper-cases the first letter and lower-cases the rest.
// Blank input yields NotInformed.
func NormalizeCity(s string) string {
	s = cleanField(s)
	if s == "" {
		return NotInformed
	}
	s = lowerPT.String(s)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// NormalizeLabel trims a free-text label, falling back when it is blank.
func NormalizeLabel(s, fallback string) string {
	s = cleanField(s)
	if s == "" {
		return fallback
	}
	return s
}

func cleanField(s string) string {
	if s == "" {
		return ""
	}
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
