// Package stats reduces visitor lists into the dashboard distributions.
package stats

import (
	"math"
	"slices"
	"time"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

const (
	// IncompleteRegistration labels visitors without an informed gender.
	IncompleteRegistration = "Cadastro Incompleto"
	// OthersLabel collects every city outside the top entries.
	OthersLabel = "Outras"

	// TopCities is how many cities keep their own slice.
	TopCities = 7
	// TopVisitDates is how many visit days are charted.
	TopVisitDates = 10
)

// Age bracket labels, in chart order.
const (
	BracketKids    = "0-17"
	BracketYoung   = "18-25"
	BracketAdult   = "26-35"
	BracketMiddle  = "36-50"
	BracketSenior  = "51+"
	BracketUnknown = util.NotInformed
)

// AgeBrackets lists every bracket label in the order they are emitted.
var AgeBrackets = []string{BracketKids, BracketYoung, BracketAdult, BracketMiddle, BracketSenior, BracketUnknown}

// Aggregate reduces visitors into dashboard distributions. Ages are computed by
// calendar-year subtraction against now. The input slice is never modified.
func Aggregate(visitors []model.Visitor, now time.Time) model.StatsBundle {
	leaders := newTally()
	genders := newTally()
	cities := newTally()
	visitDays := newTally()
	ages := make(map[string]int, len(AgeBrackets))

	for _, v := range visitors {
		leaders.add(util.NormalizeLabel(v.GFResponsavel, util.NotInformed))
		genders.add(util.NormalizeLabel(v.Sexo, IncompleteRegistration))
		cities.add(util.NormalizeCity(v.Endereco.Cidade))
		ages[ageBracket(v.DataNascimento, now)]++
		visitDays.add(visitDayLabel(v.DataVisita))
	}

	return model.StatsBundle{
		Total:        len(visitors),
		ByLeader:     shares(leaders.counts(), len(visitors)),
		ByGender:     genders.counts(),
		ByAgeBracket: bracketCounts(ages),
		ByCity:       topWithOthers(cities.counts(), TopCities),
		ByVisitDate:  top(visitDays.counts(), TopVisitDates),
		GeneratedAt:  now.UTC(),
	}
}

func ageBracket(birth string, now time.Time) string {
	t, ok := ParseDate(birth)
	if !ok {
		return BracketUnknown
	}
	age := now.Year() - t.Year()
	switch {
	case age < 0:
		return BracketUnknown
	case age <= 17:
		return BracketKids
	case age <= 25:
		return BracketYoung
	case age <= 35:
		return BracketAdult
	case age <= 50:
		return BracketMiddle
	default:
		return BracketSenior
	}
}

func visitDayLabel(visit string) string {
	t, ok := ParseDate(visit)
	if !ok {
		return util.NotInformed
	}
	return t.Format("02/01")
}

func bracketCounts(ages map[string]int) []model.CategoryCount {
	out := make([]model.CategoryCount, 0, len(AgeBrackets))
	for _, label := range AgeBrackets {
		out = append(out, model.CategoryCount{Label: label, Count: ages[label]})
	}
	return out
}

func shares(counts []model.CategoryCount, total int) []model.CategoryShare {
	out := make([]model.CategoryShare, 0, len(counts))
	for _, c := range counts {
		out = append(out, model.CategoryShare{
			Label:   c.Label,
			Count:   c.Count,
			Percent: percent(c.Count, total),
		})
	}
	return out
}

// percent rounds to one decimal place. A zero total yields zero, never NaN.
func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(total)) / 10
}

func sortByCountDesc(counts []model.CategoryCount) []model.CategoryCount {
	sorted := slices.Clone(counts)
	slices.SortStableFunc(sorted, func(a, b model.CategoryCount) int {
		return b.Count - a.Count
	})
	return sorted
}

func top(counts []model.CategoryCount, n int) []model.CategoryCount {
	sorted := sortByCountDesc(counts)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func topWithOthers(counts []model.CategoryCount, n int) []model.CategoryCount {
	sorted := sortByCountDesc(counts)
	if len(sorted) <= n {
		return sorted
	}
	var rest int
	for _, c := range sorted[n:] {
		rest += c.Count
	}
	out := sorted[:n:n]
	if rest > 0 {
		out = append(out, model.CategoryCount{Label: OthersLabel, Count: rest})
	}
	return out
}

// tally counts labels while remembering first-encounter order.
type tally struct {
	order []string
	byKey map[string]int
}

func newTally() *tally {
	return &tally{byKey: make(map[string]int)}
}

func (t *tally) add(label string) {
	if _, seen := t.byKey[label]; !seen {
		t.order = append(t.order, label)
	}
	t.byKey[label]++
}

func (t *tally) counts() []model.CategoryCount {
	out := make([]model.CategoryCount, 0, len(t.order))
	for _, label := range t.order {
		out = append(out, model.CategoryCount{Label: label, Count: t.byKey[label]})
	}
	return out
}
