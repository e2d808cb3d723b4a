package result

import "slices"

// Display holds per-document display payloads indexed [field][document].
// Summaries is empty when summary generation is disabled.
type Display struct {
	Snippets  [][]string
	FullTexts [][]string
	Summaries [][]string
}

// NewDisplay allocates fields rows of n empty slots each.
func NewDisplay(fields, n int, withSummary bool) Display {
	d := Display{
		Snippets:  makeRows(fields, n),
		FullTexts: makeRows(fields, n),
	}
	if withSummary {
		d.Summaries = makeRows(fields, n)
	}
	return d
}

// FieldCount returns the number of display properties.
func (d *Display) FieldCount() int { return len(d.Snippets) }

// SummaryEnabled reports whether summaries are carried.
func (d *Display) SummaryEnabled() bool { return len(d.Summaries) > 0 }

// CopySlot copies document src of from into slot dst of d for every field d
// carries. Payloads missing on the source side leave the slot untouched.
func (d *Display) CopySlot(dst int, from *Display, src int) {
	for f := range d.Snippets {
		copyCell(d.Snippets, from.Snippets, f, dst, src)
		copyCell(d.FullTexts, from.FullTexts, f, dst, src)
		if len(d.Summaries) > 0 {
			copyCell(d.Summaries, from.Summaries, f, dst, src)
		}
	}
}

// Clone returns a deep copy.
func (d Display) Clone() Display {
	return Display{
		Snippets:  cloneRows(d.Snippets),
		FullTexts: cloneRows(d.FullTexts),
		Summaries: cloneRows(d.Summaries),
	}
}

func copyCell(dst, src [][]string, field, to, from int) {
	if field >= len(dst) || field >= len(src) {
		return
	}
	if to >= len(dst[field]) || from >= len(src[field]) {
		return
	}
	dst[field][to] = src[field][from]
}

func makeRows(fields, n int) [][]string {
	rows := make([][]string, fields)
	for i := range rows {
		rows[i] = make([]string, n)
	}
	return rows
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
