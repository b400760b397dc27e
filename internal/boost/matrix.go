package boost

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Matrix is a dense row-major feature frame with named columns. Rows are
// appended once during pipeline assembly and read many times during training.
type Matrix struct {
	names []string
	rows  [][]float64
}

func NewMatrix(names []string) *Matrix {
	copied := make([]string, len(names))
	copy(copied, names)
	return &Matrix{names: copied}
}

// Append adds a row, enforcing the frame width
func (m *Matrix) Append(row []float64) error {
	if len(row) != len(m.names) {
		return fmt.Errorf("row width %d does not match frame width %d", len(row), len(m.names))
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *Matrix) Rows() int {
	return len(m.rows)
}

func (m *Matrix) Cols() int {
	return len(m.names)
}

func (m *Matrix) At(i, j int) float64 {
	return m.rows[i][j]
}

// Row returns the backing slice for row i. Callers must not modify it.
func (m *Matrix) Row(i int) []float64 {
	return m.rows[i]
}

// Names returns the column names in order
func (m *Matrix) Names() []string {
	return m.names
}

// Column copies column j into a new slice
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.rows))
	for i, row := range m.rows {
		col[i] = row[j]
	}
	return col
}

// ColumnSum returns the sum of column j
func (m *Matrix) ColumnSum(j int) float64 {
	return floats.Sum(m.Column(j))
}
