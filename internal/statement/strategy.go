package statement

import (
	"sort"

	"github.com/mlevkov/docledger/internal/domain"
	"github.com/mlevkov/docledger/internal/pdftext"
)

// Strategy is one complete document-to-candidates extraction algorithm.
// Extract returns an empty slice (or an error) when the document does not
// match the strategy's detection heuristics; the parser then falls through to
// the next strategy.
type Strategy interface {
	Name() string
	Extract(data []byte) ([]domain.CandidateTransaction, error)
}

// extractFromTables applies the shared header-detection and row
// classification logic to a set of raw tables. Both strategies funnel
// through here so their behavior cannot diverge beyond table detection.
//
// The header can sit anywhere below a page preamble (bank name, address,
// statement period), so every row but the last is a candidate. A row
// mapping both a date and a money column wins immediately; a weaker mapping
// is kept only as a fallback so that a preamble line like "Statement Date"
// cannot shadow the real header.
func extractFromTables(tables [][][]string, classifier *Classifier) []domain.CandidateTransaction {
	var out []domain.CandidateTransaction
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}

		var mapping, fallback HeaderMapping
		start, fallbackStart := 0, 0
		for i := 0; i < len(table)-1; i++ {
			m := MapHeaders(table[i])
			if m.anchored() {
				mapping, start = m, i+1
				break
			}
			if fallback == nil && m.usable() {
				fallback, fallbackStart = m, i+1
			}
		}
		if mapping == nil {
			mapping, start = fallback, fallbackStart
		}
		if mapping == nil {
			continue
		}

		for _, row := range table[start:] {
			if cand := classifier.ClassifyRow(row, mapping); cand != nil {
				out = append(out, *cand)
			}
		}
	}
	return out
}

// GridStrategy reconstructs tables from page geometry: text items are
// clustered into column bands by X position. It suits statements whose
// tables are laid out as true grids.
type GridStrategy struct {
	classifier *Classifier
}

// NewGridStrategy returns the geometry-based extraction strategy.
func NewGridStrategy(classifier *Classifier) *GridStrategy {
	return &GridStrategy{classifier: classifier}
}

func (s *GridStrategy) Name() string { return "grid" }

func (s *GridStrategy) Extract(data []byte) ([]domain.CandidateTransaction, error) {
	grids, err := pdftext.Grids(data)
	if err != nil {
		return nil, err
	}
	tables := make([][][]string, len(grids))
	for i, g := range grids {
		tables[i] = g
	}
	return extractFromTables(tables, s.classifier), nil
}

// TextStrategy reconstructs tables from layout-preserving text lines. It
// suits statements without explicit table geometry, and OCR output.
type TextStrategy struct {
	classifier *Classifier
}

// NewTextStrategy returns the text-layout-based extraction strategy.
func NewTextStrategy(classifier *Classifier) *TextStrategy {
	return &TextStrategy{classifier: classifier}
}

func (s *TextStrategy) Name() string { return "textlayout" }

func (s *TextStrategy) Extract(data []byte) ([]domain.CandidateTransaction, error) {
	pages, err := pdftext.LayoutLines(data)
	if err != nil {
		return nil, err
	}

	var tables [][][]string
	for _, lines := range pages {
		tables = append(tables, TablesFromLines(lines)...)
	}
	return extractFromTables(tables, s.classifier), nil
}

// textSpan is a run of cell text with the rune column it starts at.
type textSpan struct {
	start int
	text  string
}

// splitSpans cuts a line into cell spans at tabs or runs of two or more
// spaces. A single interior space stays inside its cell.
func splitSpans(line string) []textSpan {
	runes := []rune(line)
	var spans []textSpan
	for i := 0; i < len(runes); {
		if runes[i] == ' ' || runes[i] == '\t' {
			i++
			continue
		}
		start := i
		j := i
		for j < len(runes) {
			if runes[j] == '\t' {
				break
			}
			if runes[j] == ' ' {
				if j+1 >= len(runes) || runes[j+1] == ' ' {
					break
				}
			}
			j++
		}
		spans = append(spans, textSpan{start: start, text: string(runes[start:j])})
		i = j
	}
	return spans
}

// TablesFromLines reconstructs tables from layout-preserving text lines.
// Consecutive lines with two or more cell spans form a candidate table; span
// start offsets across the table are clustered into column bands and each
// row's cells are placed positionally, so an empty cell in an aligned column
// stays empty instead of shifting the cells after it one column left.
// Single-span lines terminate the current table.
func TablesFromLines(lines []string) [][][]string {
	var tables [][][]string
	var block [][]textSpan

	flush := func() {
		if t := tableFromSpans(block); t != nil {
			tables = append(tables, t)
		}
		block = nil
	}

	for _, line := range lines {
		spans := splitSpans(line)
		if len(spans) < 2 {
			flush()
			continue
		}
		block = append(block, spans)
	}
	flush()
	return tables
}

// columnMergeGap is the rune distance within which two span start offsets
// count as the same column. Right-aligned numeric columns start a few runes
// apart from row to row.
const columnMergeGap = 3

func tableFromSpans(block [][]textSpan) [][]string {
	if len(block) < 2 {
		return nil
	}

	var starts []int
	for _, row := range block {
		for _, s := range row {
			starts = append(starts, s.start)
		}
	}
	cols := clusterStarts(starts)
	if len(cols) < 2 {
		return nil
	}

	table := make([][]string, 0, len(block))
	for _, row := range block {
		cells := make([]string, len(cols))
		for _, s := range row {
			c := nearestStart(cols, s.start)
			if cells[c] == "" {
				cells[c] = s.text
			} else {
				cells[c] += " " + s.text
			}
		}
		table = append(table, cells)
	}
	return table
}

// clusterStarts merges start offsets closer than columnMergeGap into single
// column anchors and returns the anchors in left-to-right order.
func clusterStarts(starts []int) []int {
	if len(starts) == 0 {
		return nil
	}
	sort.Ints(starts)

	var cols []int
	first := starts[0]
	sum, n := starts[0], 1
	for _, s := range starts[1:] {
		if s-first > columnMergeGap {
			cols = append(cols, sum/n)
			first, sum, n = s, s, 1
			continue
		}
		sum += s
		n++
	}
	cols = append(cols, sum/n)
	return cols
}

func nearestStart(cols []int, x int) int {
	best := 0
	bestDist := absInt(cols[0] - x)
	for i, c := range cols[1:] {
		if d := absInt(c - x); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
