// Package pdftext reads text out of PDF documents, preserving enough layout
// to reconstruct tables. It wraps github.com/ledongthuc/pdf, which panics on
// some malformed files, so every entry point recovers and reports an error
// instead.
package pdftext

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Item is a positioned piece of text on a page. Coordinates are PDF points;
// Y grows from the bottom of the page upwards.
type Item struct {
	X, Y float64
	S    string
}

// Row is a horizontal band of items sharing a baseline, sorted left to right.
type Row []Item

// Page holds the positioned text of one page grouped into rows, top to
// bottom.
type Page struct {
	Number int
	Rows   []Row
}

// columnGap is the horizontal distance, in points, beyond which two adjacent
// items are considered to belong to different table columns.
const columnGap = 15.0

// yTolerance controls how far apart two baselines may be while still counting
// as the same row.
const yTolerance = 2.0

// Pages parses the document and returns per-page positioned text.
func Pages(data []byte) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdftext: reader panicked: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdftext: opening document: %w", err)
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdftext: document has no pages")
	}

	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		if len(content.Text) == 0 {
			continue
		}
		pages = append(pages, Page{Number: i, Rows: groupRows(content.Text)})
	}
	return pages, nil
}

// groupRows buckets text items by baseline and orders them top-to-bottom,
// left-to-right.
func groupRows(text []pdf.Text) []Row {
	type bucket struct {
		y     float64
		items []Item
	}
	var buckets []*bucket

	for _, t := range text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		var b *bucket
		for _, cand := range buckets {
			if math.Abs(cand.y-t.Y) <= yTolerance {
				b = cand
				break
			}
		}
		if b == nil {
			b = &bucket{y: t.Y}
			buckets = append(buckets, b)
		}
		b.items = append(b.items, Item{X: t.X, Y: t.Y, S: t.S})
	}

	// PDF Y grows upward: larger Y means nearer the top of the page.
	sort.Slice(buckets, func(a, b int) bool { return buckets[a].y > buckets[b].y })

	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		sort.Slice(b.items, func(i, j int) bool { return b.items[i].X < b.items[j].X })
		rows = append(rows, Row(b.items))
	}
	return rows
}

// Lines renders each page as plain text lines. Items separated by a large
// horizontal gap get a double-space separator so column boundaries survive
// into the text form.
func Lines(data []byte) ([][]string, error) {
	pages, err := Pages(data)
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(pages))
	for _, page := range pages {
		var lines []string
		for _, row := range page.Rows {
			var b strings.Builder
			var prev *Item
			for i := range row {
				it := row[i]
				if prev != nil {
					if it.X-prev.X > columnGap {
						b.WriteString("  ")
					} else {
						b.WriteString(" ")
					}
				}
				b.WriteString(it.S)
				prev = &row[i]
			}
			line := strings.TrimSpace(b.String())
			if line != "" {
				lines = append(lines, line)
			}
		}
		out = append(out, lines)
	}
	return out, nil
}

// layoutCharWidth approximates the width of one character cell, in points,
// when projecting item X positions onto fixed-pitch text columns.
const layoutCharWidth = 6.0

// LayoutLines renders each page as fixed-pitch text lines: every item starts
// at the column its X position projects to, padded with spaces. Horizontal
// alignment survives into the text form, so a row with an empty cell keeps
// its remaining cells under their original columns.
func LayoutLines(data []byte) ([][]string, error) {
	pages, err := Pages(data)
	if err != nil {
		return nil, err
	}

	out := make([][]string, 0, len(pages))
	for _, page := range pages {
		var lines []string
		for _, row := range page.Rows {
			if line := layoutLine(row); line != "" {
				lines = append(lines, line)
			}
		}
		out = append(out, lines)
	}
	return out, nil
}

// layoutLine renders one row at fixed pitch, placing each item at the column
// its X position projects to.
func layoutLine(row Row) string {
	var b strings.Builder
	col := 0
	for _, it := range row {
		target := int(it.X / layoutCharWidth)
		// Overlapping projections still need a separator.
		if col > 0 && target <= col {
			target = col + 1
		}
		for col < target {
			b.WriteByte(' ')
			col++
		}
		b.WriteString(it.S)
		col += utf8.RuneCountInString(it.S)
	}
	return strings.TrimRight(b.String(), " ")
}

// Text returns the whole document as one string, pages separated by blank
// lines.
func Text(data []byte) (string, error) {
	pages, err := Lines(data)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, lines := range pages {
		parts = append(parts, strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

// Grid is a table reconstructed from page geometry: rows of cell text, one
// cell per detected column. Cells with no item at that position are empty
// strings.
type Grid [][]string

// Grids derives one table per page by clustering item X positions into
// columns. Pages whose text does not form at least a 2x2 grid are skipped.
func Grids(data []byte) ([]Grid, error) {
	pages, err := Pages(data)
	if err != nil {
		return nil, err
	}

	var grids []Grid
	for _, page := range pages {
		g := gridFromRows(page.Rows)
		if len(g) >= 2 && len(g[0]) >= 2 {
			grids = append(grids, g)
		}
	}
	return grids, nil
}

// gridFromRows clusters the X start positions of all items on the page into
// column bands, then assigns every item to the nearest band.
func gridFromRows(rows []Row) Grid {
	var xs []float64
	for _, row := range rows {
		for _, it := range row {
			xs = append(xs, it.X)
		}
	}
	cols := clusterColumns(xs)
	if len(cols) < 2 {
		return nil
	}

	grid := make(Grid, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(cols))
		for _, it := range row {
			c := nearestColumn(cols, it.X)
			if cells[c] == "" {
				cells[c] = it.S
			} else {
				cells[c] += " " + it.S
			}
		}
		grid = append(grid, cells)
	}
	return grid
}

// clusterColumns merges X positions closer than columnGap into single column
// anchors and returns the anchors in left-to-right order.
func clusterColumns(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	sort.Float64s(xs)

	var cols []float64
	start := xs[0]
	sum := xs[0]
	n := 1
	for _, x := range xs[1:] {
		if x-start > columnGap {
			cols = append(cols, sum/float64(n))
			start = x
			sum, n = x, 1
			continue
		}
		sum += x
		n++
	}
	cols = append(cols, sum/float64(n))
	return cols
}

func nearestColumn(cols []float64, x float64) int {
	best := 0
	bestDist := math.Abs(cols[0] - x)
	for i, c := range cols[1:] {
		if d := math.Abs(c - x); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}
