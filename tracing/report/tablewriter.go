/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// maxTableWidth keeps reports readable in CI logs.
const maxTableWidth = 120

type column struct {
	title string
	align tw.Align
}

func left(title string) column  { return column{title: title, align: tw.AlignLeft} }
func right(title string) column { return column{title: title, align: tw.AlignRight} }

// markdownTable accumulates rows and renders them as a GitHub markdown table.
type markdownTable struct {
	buf   bytes.Buffer
	table *tablewriter.Table
}

func newMarkdownTable(cols ...column) *markdownTable {
	titles := make([]string, len(cols))
	aligns := make([]tw.Align, len(cols))
	for i, c := range cols {
		titles[i] = c.title
		aligns[i] = c.align
	}

	m := &markdownTable{}
	m.table = tablewriter.NewTable(&m.buf,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{PerColumn: aligns},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: aligns},
			},
			MaxWidth: maxTableWidth,
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader(titles),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	return m
}

func (m *markdownTable) row(cells ...string) {
	_ = m.table.Append(cells)
}

func (m *markdownTable) String() string {
	_ = m.table.Render()
	return m.buf.String()
}
