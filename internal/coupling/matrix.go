package coupling

// Matrix is a square file×file count matrix stored row-major in a flat slice.
// Row and column i both refer to Registry().Path(i).
type Matrix struct {
	reg   *Registry
	n     int
	cells []int
}

// NewMatrix returns a zero matrix over reg.
func NewMatrix(reg *Registry) *Matrix {
	n := reg.Len()
	return &Matrix{reg: reg, n: n, cells: make([]int, n*n)}
}

// Registry returns the path index of both axes.
func (m *Matrix) Registry() *Registry { return m.reg }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (r, c int) { return m.n, m.n }

// At returns the count in row i, column j.
func (m *Matrix) At(i, j int) int { return m.cells[i*m.n+j] }

// Inc adds one to row i, column j.
func (m *Matrix) Inc(i, j int) { m.cells[i*m.n+j]++ }

// Count returns the cell for two paths; unknown paths count zero.
func (m *Matrix) Count(a, b string) int {
	i, ok := m.reg.Index(a)
	if !ok {
		return 0
	}
	j, ok := m.reg.Index(b)
	if !ok {
		return 0
	}
	return m.At(i, j)
}

// Max returns the largest cell, 0 for an empty matrix.
func (m *Matrix) Max() int {
	hi := 0
	for i, v := range m.cells {
		if i == 0 || v > hi {
			hi = v
		}
	}
	return hi
}

// Min returns the smallest cell, 0 for an empty matrix.
func (m *Matrix) Min() int {
	lo := 0
	for i, v := range m.cells {
		if i == 0 || v < lo {
			lo = v
		}
	}
	return lo
}

// IsSymmetric reports whether every (i,j) equals (j,i).
func (m *Matrix) IsSymmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}
