package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"pkt.systems/notepad/schema"
)

const maxTabLabel = 16

// renderTabBar draws the tab strip. When the tabs do not fit, a window
// around the active tab is shown with < and > marking hidden tabs.
func renderTabBar(session schema.SessionSnapshot, width int, th theme) string {
	if width <= 0 {
		width = 80
	}
	tabs := session.Tabs
	labels := make([]string, 0, len(tabs))
	widths := make([]int, 0, len(tabs))
	activeIndex := 0
	total := 0
	for i, tab := range tabs {
		name := runewidth.Truncate(string(tab.Name), maxTabLabel, "…")
		if tab.Modified {
			name += th.modified.Render("*")
		}
		style := th.tab
		if tab.ID == session.ActiveTab {
			style = th.tabActive
			activeIndex = i
		}
		label := style.Render(name)
		labels = append(labels, label)
		w := lipgloss.Width(label)
		widths = append(widths, w)
		total += w
	}
	window := tabWindow{start: 0, end: len(tabs)}
	if total > width {
		window = tabWindowActiveRight(widths, activeIndex, width)
	}
	var b strings.Builder
	if window.leftHidden {
		b.WriteString(th.tab.Render("<"))
	}
	for i := window.start; i < window.end; i++ {
		b.WriteString(labels[i])
	}
	if window.rightHidden {
		b.WriteString(th.tab.Render(">"))
	}
	line := truncate.String(b.String(), uint(width))
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += th.bar.Render(strings.Repeat(" ", pad))
	}
	return line
}

type tabWindow struct {
	start       int
	end         int
	leftHidden  bool
	rightHidden bool
}

// tabWindowActiveRight fits as many tabs as possible that end with the active one.
func tabWindowActiveRight(widths []int, activeIndex int, width int) tabWindow {
	n := len(widths)
	if n == 0 {
		return tabWindow{}
	}
	if activeIndex < 0 {
		activeIndex = 0
	}
	if activeIndex >= n {
		activeIndex = n - 1
	}
	end := activeIndex + 1
	rightHidden := end < n
	leftHidden := false
	start := end - 1
	for i := 0; i < 3; i++ {
		avail := width
		if leftHidden {
			avail -= 3
		}
		if rightHidden {
			avail -= 3
		}
		if avail < 1 {
			avail = 1
		}
		start = fitBackward(widths, end, avail)
		leftHidden = start > 0
	}
	return tabWindow{start: start, end: end, leftHidden: leftHidden, rightHidden: rightHidden}
}

func fitBackward(widths []int, end int, avail int) int {
	if end < 1 {
		return 0
	}
	if end > len(widths) {
		end = len(widths)
	}
	sum := 0
	start := end
	for i := end - 1; i >= 0; i-- {
		if sum+widths[i] > avail {
			break
		}
		sum += widths[i]
		start = i
	}
	if start == end {
		start = end - 1
	}
	return start
}

// renderStatus draws the footer: name and position on the left, counts
// and view settings on the right.
func renderStatus(session schema.SessionSnapshot, stats schema.TextStats, width int, th theme) string {
	if width <= 0 {
		width = 80
	}
	view := session.View
	left := fmt.Sprintf(" %s  Ln %d, Col %d", session.Document.Name, stats.Line, stats.Column)
	wrapLabel := "wrap"
	if !view.WordWrap {
		wrapLabel = "nowrap"
	}
	right := fmt.Sprintf("%d chars  %d words  %d lines  %s  %dpx  %d%% ",
		stats.Characters, stats.Words, stats.Lines, wrapLabel, view.FontSize, view.Zoom)
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
	line := left
	if gap > 0 {
		line += strings.Repeat(" ", gap) + right
	} else {
		line = runewidth.Truncate(left+" "+right, width, "…")
	}
	return th.status.Render(runewidth.FillRight(line, width))
}

// renderDocument lays out content for a terminal of the given width with a
// line-number gutter. Word wrap follows the session view setting; without
// it long lines are truncated.
func renderDocument(content string, wordWrap bool, width int, th theme) []string {
	if width <= 0 {
		width = 80
	}
	lines := strings.Split(content, "\n")
	digits := len(strconv.Itoa(len(lines)))
	textWidth := width - digits - 3
	if textWidth < 8 {
		textWidth = 8
	}
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		line = strings.ReplaceAll(line, "\t", "    ")
		number := th.gutter.Render(fmt.Sprintf("%*d │ ", digits, i+1))
		blank := th.gutter.Render(strings.Repeat(" ", digits) + " │ ")
		if !wordWrap {
			if runewidth.StringWidth(line) > textWidth {
				line = truncate.StringWithTail(line, uint(textWidth), "…")
			}
			out = append(out, number+line)
			continue
		}
		wrapped := wrap.String(wordwrap.String(line, textWidth), textWidth)
		for j, part := range strings.Split(wrapped, "\n") {
			prefix := number
			if j > 0 {
				prefix = blank
			}
			out = append(out, prefix+part)
		}
	}
	return out
}
