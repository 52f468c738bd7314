package coupling

import (
	"math"
	"sort"

	"github.com/rohankatakam/defacto/internal/history"
)

// DayIndex maps a calendar day to the positions of the commits made on it.
type DayIndex struct {
	byDay map[history.Day][]int
	days  []history.Day // distinct days, ascending
}

// NewDayIndex indexes commits by day. Positions refer to the commits slice.
func NewDayIndex(commits []history.Commit) *DayIndex {
	idx := &DayIndex{byDay: make(map[history.Day][]int)}
	for i, c := range commits {
		if _, ok := idx.byDay[c.Day]; !ok {
			idx.days = append(idx.days, c.Day)
		}
		idx.byDay[c.Day] = append(idx.byDay[c.Day], i)
	}
	sort.Slice(idx.days, func(a, b int) bool { return idx.days[a] < idx.days[b] })
	return idx
}

// Window returns the positions of all commits in [day-w, day+w].
// Days without commits contribute nothing. Bounds saturate instead of
// overflowing, so any w >= 0 is valid.
func (idx *DayIndex) Window(day history.Day, w int) []int {
	lo, hi := windowBounds(int(day), w)

	var out []int
	start := sort.Search(len(idx.days), func(i int) bool { return int(idx.days[i]) >= lo })
	for _, d := range idx.days[start:] {
		if int(d) > hi {
			break
		}
		out = append(out, idx.byDay[d]...)
	}
	return out
}

func windowBounds(day, w int) (lo, hi int) {
	lo, hi = math.MinInt, math.MaxInt
	if day >= math.MinInt+w {
		lo = day - w
	}
	if day <= math.MaxInt-w {
		hi = day + w
	}
	return lo, hi
}
