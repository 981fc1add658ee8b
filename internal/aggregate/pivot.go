package aggregate

import (
	"sort"

	"github.com/srr_metrics/backend/internal/models"
)

// Matrix is a zero-filled count pivot. Counts[i][j] pairs Rows[i] with
// Columns[j]; Totals[i] is the row sum.
type Matrix struct {
	RowDimension    Dimension `json:"row_dimension"`
	ColumnDimension Dimension `json:"column_dimension"`
	Rows            []string  `json:"rows"`
	Columns         []string  `json:"columns"`
	Counts          [][]int   `json:"counts"`
	Totals          []int     `json:"totals"`
}

func (m Matrix) At(row, col string) int {
	for i, r := range m.Rows {
		if r != row {
			continue
		}
		for j, c := range m.Columns {
			if c == col {
				return m.Counts[i][j]
			}
		}
	}
	return 0
}

func Pivot(records []models.Interaction, rowDim, colDim Dimension) Matrix {
	cells := map[[2]string]int{}
	rowSet := map[string]struct{}{}
	colSet := map[string]struct{}{}
	for _, r := range records {
		rk, ok := rowDim.key(r)
		if !ok {
			continue
		}
		ck, ok := colDim.key(r)
		if !ok {
			continue
		}
		rowSet[rk] = struct{}{}
		colSet[ck] = struct{}{}
		cells[[2]string{rk, ck}]++
	}

	m := Matrix{
		RowDimension:    rowDim,
		ColumnDimension: colDim,
		Rows:            keysOf(rowSet),
		Columns:         keysOf(colSet),
	}
	sortKeys(m.Rows, rowDim)
	sortKeys(m.Columns, colDim)
	m.Counts = make([][]int, len(m.Rows))
	m.Totals = make([]int, len(m.Rows))
	for i, rk := range m.Rows {
		m.Counts[i] = make([]int, len(m.Columns))
		for j, ck := range m.Columns {
			n := cells[[2]string{rk, ck}]
			m.Counts[i][j] = n
			m.Totals[i] += n
		}
	}
	return m
}

func RequestorServiceMatrix(records []models.Interaction) Matrix {
	return Pivot(records, DimRequestor, DimService)
}

func HourlyServiceCounts(records []models.Interaction) Matrix {
	return Pivot(records, DimHour, DimService)
}

func HourlyReasonCounts(records []models.Interaction) Matrix {
	return Pivot(records, DimHour, DimCaseReason)
}

type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func countBy(records []models.Interaction, dim Dimension) []Count {
	counts := map[string]int{}
	for _, r := range records {
		if k, ok := dim.key(r); ok {
			counts[k]++
		}
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Value: k, Count: n})
	}
	return out
}

func sortCounts(out []Count, desc bool) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			if desc {
				return out[i].Count > out[j].Count
			}
			return out[i].Count < out[j].Count
		}
		return out[i].Value < out[j].Value
	})
}

// ReasonDistribution lists case reasons by count, smallest first.
func ReasonDistribution(records []models.Interaction) []Count {
	out := countBy(records, DimCaseReason)
	sortCounts(out, false)
	return out
}

func ServiceCounts(records []models.Interaction) []Count {
	out := countBy(records, DimService)
	sortCounts(out, true)
	return out
}

// AgentCounts lists interactions handled per agent, busiest first.
func AgentCounts(records []models.Interaction) []Count {
	out := countBy(records, DimAgent)
	sortCounts(out, true)
	return out
}

func keysOf(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
