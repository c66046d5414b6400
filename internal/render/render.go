// Package render draws hash trees, authenticated paths, and evidence
// records as fixed-width ASCII for the CLI's show command.
package render

import (
	"fmt"
	"io"
	"strings"

	"ervault/internal/domain"
	"ervault/internal/hashtree"
)

const childSpacing = 4

// Options controls rendering. FormatDigest converts a digest to its
// display form; nil means printable digests render verbatim and binary
// digests render as truncated hex.
type Options struct {
	FormatDigest func([]byte) string
}

func (o Options) format(d []byte) string {
	if o.FormatDigest != nil {
		return o.FormatDigest(d)
	}
	return defaultFormat(d)
}

func defaultFormat(d []byte) string {
	printable := len(d) > 0
	for _, b := range d {
		if b < 0x20 || b > 0x7e {
			printable = false
			break
		}
	}
	s := string(d)
	if !printable {
		s = fmt.Sprintf("%x", d)
	}
	if len(s) > 24 {
		s = s[:10] + ".." + s[len(s)-10:]
	}
	return s
}

// Tree renders the full tree top-down with boxed nodes.
func Tree(t *hashtree.Tree, opts Options) []string {
	if t == nil {
		return []string{"no tree"}
	}
	return renderNode(t.Root(), opts)
}

func renderNode(v hashtree.NodeView, opts Options) []string {
	node := box(opts.format(v.Digest()))

	left, hasLeft := v.Left()
	right, hasRight := v.Right()
	if !hasLeft && !hasRight {
		return node
	}

	var leftLines, rightLines []string
	if hasLeft {
		leftLines = renderNode(left, opts)
	}
	if hasRight {
		rightLines = renderNode(right, opts)
	}
	leftWidth := blockWidth(leftLines)
	rightWidth := blockWidth(rightLines)

	lines := make([]string, 0, len(node)+1+max(len(leftLines), len(rightLines)))
	nodePadding := (leftWidth + rightWidth + childSpacing - len(node[0])) / 2
	if nodePadding < 0 {
		nodePadding = 0
	}
	for _, line := range node {
		lines = append(lines, spaces(nodePadding)+line)
	}

	switch {
	case hasLeft && hasRight:
		lines = append(lines, spaces(leftWidth/2)+"/"+spaces(childSpacing-2)+`\`+spaces(rightWidth/2))
	case hasLeft:
		lines = append(lines, spaces(leftWidth/2)+"|")
	case hasRight:
		lines = append(lines, spaces(childSpacing+rightWidth/2)+"|")
	}

	for i := 0; i < max(len(leftLines), len(rightLines)); i++ {
		row := padRight(lineAt(leftLines, i), leftWidth) + spaces(childSpacing) + lineAt(rightLines, i)
		lines = append(lines, strings.TrimRight(row, " "))
	}
	return lines
}

// Path renders an authenticated path bottom-up, one line per step.
func Path(p domain.AuthenticatedPath, opts Options) []string {
	lines := []string{"leaf: " + opts.format(p.LeafDigest)}
	for i, step := range p.Steps {
		if step.Sibling == nil {
			lines = append(lines, fmt.Sprintf("step %d: promoted -> %s", i+1, opts.format(step.Digest)))
			continue
		}
		side := "right"
		if step.SiblingOnLeft {
			side = "left"
		}
		lines = append(lines, fmt.Sprintf("step %d: sibling (%s) %s -> %s",
			i+1, side, opts.format(step.Sibling.Digest), opts.format(step.Digest)))
	}
	return lines
}

// Record renders an evidence record: a header box followed by one
// section per chain link with its timestamp and authenticated path.
func Record(rec domain.EvidenceRecord, opts Options) []string {
	lines := headerBox(fmt.Sprintf("Evidence Record v%d - %s", rec.Version, rec.DigestAlgorithm), 60)
	lines = append(lines, "")

	if len(rec.Chain) == 0 {
		return append(lines, "empty chain sequence")
	}

	lines = append(lines, "Archive Chain Sequence:", strings.Repeat("-", 30))
	for i, link := range rec.Chain {
		lines = append(lines, fmt.Sprintf("Link %d:", i+1), "")
		ts := headerBox(fmt.Sprintf("Timestamp: %s [%s]",
			link.Timestamp.At.UTC().Format("2006-01-02 15:04:05"),
			link.Timestamp.Algorithm), 50)
		for _, l := range ts {
			lines = append(lines, "  "+l)
		}
		for _, l := range Path(link.Path, opts) {
			lines = append(lines, "  "+l)
		}
		lines = append(lines, "")
		if i < len(rec.Chain)-1 {
			lines = append(lines, strings.Repeat("-", 30))
		}
	}
	return lines
}

// Fprint writes rendered lines to w.
func Fprint(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func box(label string) []string {
	border := "+" + strings.Repeat("-", len(label)+2) + "+"
	return []string{border, "| " + label + " |", border}
}

func headerBox(text string, width int) []string {
	if len(text)+4 > width {
		width = len(text) + 4
	}
	border := "+" + strings.Repeat("-", width-2) + "+"
	return []string{
		border,
		"| " + padRight(text, width-4) + " |",
		border,
	}
}

func blockWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		if len(line) > w {
			w = len(line)
		}
	}
	return w
}

func lineAt(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + spaces(width-len(s))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
