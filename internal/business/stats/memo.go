package stats

import (
	"strconv"
	"sync"
	"time"

	"github.com/acolhimento-gf/visitantes-api/pkg/model"
	"github.com/acolhimento-gf/visitantes-api/pkg/util"
)

// Memo keeps the last computed bundle and recomputes only when the visitor list
// (or the year used for ages) changes. Safe for concurrent use.
type Memo struct {
	mu     sync.Mutex
	now    func() time.Time
	key    string
	bundle model.StatsBundle
}

// NewMemo creates a Memo. A nil clock defaults to time.Now.
func NewMemo(now func() time.Time) *Memo {
	if now == nil {
		now = time.Now
	}
	return &Memo{now: now}
}

// Aggregate returns the bundle for visitors and whether it came from the memo.
// Callers must treat the returned slices as read-only.
func (m *Memo) Aggregate(visitors []model.Visitor) (model.StatsBundle, bool) {
	now := m.now()
	key := util.HashVisitors(visitors) + ":" + strconv.Itoa(now.Year())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.key != "" && m.key == key {
		return m.bundle, true
	}
	m.bundle = Aggregate(visitors, now)
	m.key = key
	return m.bundle, false
}

// Reset drops the memoized bundle.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = ""
	m.bundle = model.StatsBundle{}
}
