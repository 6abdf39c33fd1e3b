// Package ui provides styled terminal rendering for scan output.
//
// It renders the merged device catalog as an aligned table or a detailed
// key-value block, and closes every scan with a summary box that reports
// device counts and per-source failures. Styling uses lipgloss with a
// shared palette; widths adapt to the terminal via golang.org/x/term.
package ui
