package history

import "time"

// Day is a calendar day, counted in days since 1970-01-01.
type Day int

// DayOf truncates t to its calendar day in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Add returns the day n days after d (n may be negative).
func (d Day) Add(n int) Day { return d + Day(n) }

// Sub returns the number of days between d and other.
func (d Day) Sub(other Day) int { return int(d - other) }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// Commit is a single non-merge commit. Values are never mutated after parsing.
type Commit struct {
	ID     string   `json:"id"`
	Author string   `json:"author"`
	Day    Day      `json:"day"`
	Files  []string `json:"files"`
}
