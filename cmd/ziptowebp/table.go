package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column describes one table column. Cells wider than maxWidth are cut with
// an ellipsis; zero leaves the column unbounded.
type column struct {
	header   string
	align    columnAlignment
	maxWidth int
}

func col(header string) column { return column{header: header} }

func numCol(header string) column { return column{header: header, align: alignRight} }

func detailCol(header string) column { return column{header: header, maxWidth: maxDetailWidth} }

// renderTable draws rows under columns in the rounded style. A non-empty
// footer is rendered as a totals row.
func renderTable(columns []column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(columns, func(i int) string { return columns[i].header }))
	for _, row := range rows {
		tw.AppendRow(toRow(columns, cellAt(row)))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(columns, cellAt(footer)))
	}

	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			AlignFooter: text.AlignLeft,
		}
		if c.align == alignRight {
			cfg.Align = text.AlignRight
			cfg.AlignFooter = text.AlignRight
		}
		if c.maxWidth > 0 {
			cfg.WidthMax = c.maxWidth
			cfg.WidthMaxEnforcer = truncate
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toRow(columns []column, cell func(i int) string) table.Row {
	row := make(table.Row, len(columns))
	for i := range columns {
		row[i] = cell(i)
	}
	return row
}

// cellAt pads short rows with empty cells.
func cellAt(values []string) func(i int) string {
	return func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
}
