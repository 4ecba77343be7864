// Package style holds lipgloss styles for rendered reports.
package style

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

var (
	BorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Subtle warm grey border
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	OddRowStyle = CellStyle.Foreground(lipgloss.Color("246")) // Warm muted grey text
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

// RowStyler returns a StyleFunc that mutes every other row
func RowStyler() func(row, col int) lipgloss.Style {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return HeaderStyle
		case row%2 == 1:
			return OddRowStyle
		}
		return CellStyle
	}
}

// Table applies border and row styles to a table
func Table(tbl *table.Table) {
	tbl.Border(lipgloss.NormalBorder()).
		BorderStyle(BorderStyle).
		StyleFunc(RowStyler())
}
