package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
)

func TestMemoReusesBundleForSameList(t *testing.T) {
	m := NewMemo(func() time.Time { return refNow })
	visitors := []model.Visitor{{ID: "1", Sexo: "Feminino"}}

	first, cached := m.Aggregate(visitors)
	assert.False(t, cached)

	again, cached := m.Aggregate([]model.Visitor{{ID: "1", Sexo: "Feminino"}})
	assert.True(t, cached)
	assert.Equal(t, first, again)
}

func TestMemoRecomputesOnChange(t *testing.T) {
	m := NewMemo(func() time.Time { return refNow })

	_, _ = m.Aggregate([]model.Visitor{{ID: "1", Sexo: "Feminino"}})
	got, cached := m.Aggregate([]model.Visitor{{ID: "1", Sexo: "Masculino"}})

	assert.False(t, cached)
	assert.Equal(t, []model.CategoryCount{{Label: "Masculino", Count: 1}}, got.ByGender)
}

func TestMemoRecomputesWhenYearChanges(t *testing.T) {
	now := refNow
	m := NewMemo(func() time.Time { return now })
	visitors := []model.Visitor{{ID: "1", DataNascimento: "2008-06-01"}}

	got, _ := m.Aggregate(visitors)
	assert.Equal(t, 1, countOf(t, got.ByAgeBracket, BracketYoung))

	now = refNow.AddDate(-1, 0, 0)
	got, cached := m.Aggregate(visitors)
	assert.False(t, cached)
	assert.Equal(t, 1, countOf(t, got.ByAgeBracket, BracketKids))
}

func TestMemoReset(t *testing.T) {
	m := NewMemo(func() time.Time { return refNow })
	visitors := []model.Visitor{{ID: "1"}}

	_, _ = m.Aggregate(visitors)
	m.Reset()
	_, cached := m.Aggregate(visitors)

	assert.False(t, cached)
}
