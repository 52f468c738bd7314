package coupling

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Pair is one unordered file pair with its counts in both directions.
type Pair struct {
	A       string `json:"file_a" db:"file_a"`
	B       string `json:"file_b" db:"file_b"`
	Count   int    `json:"count" db:"count"`
	Reverse int    `json:"reverse_count" db:"reverse_count"`
}

// Stats describes the non-zero pairs of a matrix.
type Stats struct {
	Files  int     `json:"files"`
	Pairs  int     `json:"pairs"`
	Max    int     `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summary is the top of the pair ranking plus distribution statistics.
type Summary struct {
	Top   []Pair
	Stats Stats
}

// Pairs returns every pair (A < B) with a non-zero count in either
// direction, strongest first; ties are ordered by path.
func Pairs(m *Matrix) []Pair {
	n, _ := m.Dims()
	reg := m.Registry()

	var pairs []Pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ab, ba := m.At(i, j), m.At(j, i)
			if ab == 0 && ba == 0 {
				continue
			}
			pairs = append(pairs, Pair{A: reg.Path(i), B: reg.Path(j), Count: ab, Reverse: ba})
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].Count != pairs[b].Count {
			return pairs[a].Count > pairs[b].Count
		}
		if pairs[a].A != pairs[b].A {
			return pairs[a].A < pairs[b].A
		}
		return pairs[a].B < pairs[b].B
	})
	return pairs
}

// Summarize ranks pairs and keeps the k strongest (all when k <= 0).
func Summarize(m *Matrix, k int) Summary {
	pairs := Pairs(m)

	stats := Stats{Files: m.Registry().Len(), Pairs: len(pairs)}
	if len(pairs) > 0 {
		values := make([]float64, len(pairs))
		for i, p := range pairs {
			values[i] = float64(p.Count)
			if p.Count > stats.Max {
				stats.Max = p.Count
			}
		}
		if len(values) > 1 {
			stats.Mean, stats.StdDev = stat.MeanStdDev(values, nil)
		} else {
			stats.Mean = values[0]
		}
	}

	if k > 0 && len(pairs) > k {
		pairs = pairs[:k]
	}
	return Summary{Top: pairs, Stats: stats}
}
