package release

import (
	"sort"
	"time"

	"github.com/yourusername/bandcamp-timeline/internal/store"
)

// リリース日時として受け付ける形式。RFC3339を優先し、日付のみの形式にフォールバックする。
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// SortByDateDesc はリリースを日付の新しい順に安定ソートします。
// 日付が欠損している、または解釈できないレコードは常に末尾へ置きます。
func SortByDateDesc(releases []store.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		ti, oki := parseDate(releases[i].Date)
		tj, okj := parseDate(releases[j].Date)
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		return ti.After(tj)
	})
}

func parseDate(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
