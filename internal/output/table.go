// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/staranto/clinicctl/internal/attrs"
	"github.com/staranto/clinicctl/internal/config"
)

// palette holds the colors.title, colors.even and colors.odd config values.
type palette struct {
	Title, Even, Odd string
}

func loadPalette() palette {
	var p palette
	p.Title, _ = config.GetString("colors.title", "#f6be00")
	p.Even, _ = config.GetString("colors.even", "#ffffff")
	p.Odd, _ = config.GetString("colors.odd", "#00c8f0")
	return p
}

// TableWriter renders rows as a borderless table of the included attrs.
func TableWriter(rows []Row, al attrs.AttrList, opts Options, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	var cols []string
	for _, a := range al {
		if a.Include {
			cols = append(cols, a.OutputKey)
		}
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(cols))
		for j, c := range cols {
			cells[i][j] = InterfaceToString(row[c], "-")
		}
	}

	writeTable(w, cols, cells, opts)
}

func writeTable(w io.Writer, headers []string, rows [][]string, opts Options) {
	base := lipgloss.NewStyle().Align(lipgloss.Left)
	header, even, odd := base, base, base

	if opts.Color {
		p := loadPalette()
		header = header.Foreground(lipgloss.Color(p.Title))
		even = even.Foreground(lipgloss.Color(p.Even))
		odd = odd.Foreground(lipgloss.Color(p.Odd))
	}

	pad, _ := config.GetInt("padding", 2)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := odd
			switch {
			case row == table.HeaderRow:
				style = header
			case row%2 == 0:
				style = even
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(rows...)

	if opts.Titles && len(headers) > 0 {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}
