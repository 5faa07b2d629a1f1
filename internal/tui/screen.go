package tui

import (
	"fmt"
	"strings"
	"time"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escBold       = "\x1b[1m"
	escDim        = "\x1b[2m"
	escReset      = "\x1b[0m"
	escCyan       = "\x1b[36m"
	escYellow     = "\x1b[33m"
	escRed        = "\x1b[31m"
	escGreen      = "\x1b[32m"
)

func (w *Watch) render() {
	w.updateSize()

	var sb strings.Builder

	// Hide cursor during render
	sb.WriteString(escHideCursor)
	sb.WriteString(escReset)
	sb.WriteString(escClear)
	sb.WriteString(escHome)

	width := w.width
	if width < 1 {
		width = 1
	}

	// Header
	sb.WriteString(escBold)
	sb.WriteString(escCyan)
	sb.WriteString(centerText("dockguard watch", width))
	sb.WriteString(escReset)
	sb.WriteString("\r\n")

	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")

	for _, line := range w.renderStateLines() {
		sb.WriteString(truncateANSI(line, width))
		sb.WriteString("\r\n")
	}

	sb.WriteString("\r\n")
	for _, line := range w.renderDisplayLines() {
		sb.WriteString(truncateANSI(line, width))
		sb.WriteString("\r\n")
	}

	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")

	sb.WriteString(truncateANSI(w.renderStatus(), width))
	sb.WriteString("\r\n")

	sb.WriteString(truncateANSI(w.renderFooter(), width))

	fmt.Print(sb.String())
}

func (w *Watch) renderStateLines() []string {
	if w.status == nil {
		return []string{escDim + "waiting for daemon..." + escReset}
	}
	s := w.status

	barrier := escRed + "INACTIVE" + escReset
	if s.BarrierActive {
		barrier = escGreen + "ACTIVE" + escReset
	}
	visibility := escDim + "hidden" + escReset
	if s.BarrierVisible {
		visibility = "visible"
	}
	highlight := escDim + "highlight off" + escReset
	if s.Highlight {
		highlight = escYellow + "highlight on" + escReset
	}

	guardian := escGreen + "running" + escReset
	if s.Paused {
		guardian = escYellow + "paused" + escReset
	}

	last := escDim + "none" + escReset
	if s.LastCorrection != "" {
		last = humanSince(s.LastCorrection)
	}

	return []string{
		fmt.Sprintf("%sBarrier%s   %s  (%d, %d) %dx%d  %s  %s",
			escBold, escReset, barrier,
			s.Barrier.X, s.Barrier.Y, s.Barrier.Width, s.Barrier.Height,
			visibility, highlight),
		fmt.Sprintf("%sGuardian%s  %s  ticks %d  corrections %d  last %s",
			escBold, escReset, guardian, s.Ticks, s.Corrections, last),
		fmt.Sprintf("%sDaemon%s    up %s  displays %d  instance %s",
			escBold, escReset, formatUptime(s.UptimeSeconds), s.DisplayCount, shortID(s.InstanceID)),
	}
}

func (w *Watch) renderDisplayLines() []string {
	lines := []string{escBold + "Displays" + escReset}

	if len(w.displays) == 0 {
		lines = append(lines, escDim+"  (none reported)"+escReset)
		return lines
	}

	for _, d := range w.displays {
		marker := "  "
		if d.Primary {
			marker = escGreen + "* " + escReset
		}
		inset := fmt.Sprintf("inset %d", d.BottomInset)
		if d.BottomInset > 0 {
			inset = escYellow + inset + escReset
		}
		lines = append(lines, fmt.Sprintf("  %s%-8s %dx%d at (%d, %d)  usable %dx%d  %s",
			marker, d.Name,
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
			d.Usable.Width, d.Usable.Height, inset))
	}

	return lines
}

func (w *Watch) renderStatus() string {
	if w.lastErr != "" {
		return fmt.Sprintf("%sError: %s%s", escRed, w.lastErr, escReset)
	}
	return ""
}

func (w *Watch) renderFooter() string {
	keys := []string{
		"p:pause", "b:highlight", "r:recompute", "q/esc/^C:quit",
	}
	return escDim + strings.Join(keys, "  ") + escReset
}

func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

func humanSince(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	d := time.Since(t)
	switch {
	case d < 5*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02 15:04")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func centerText(text string, width int) string {
	visibleLen := visibleLength(text)
	if visibleLen >= width {
		return text
	}
	padding := (width - visibleLen) / 2
	return strings.Repeat(" ", padding) + text
}

// visibleLength returns the visible length of a string, ignoring ANSI codes.
func visibleLength(s string) int {
	inEscape := false
	length := 0
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		length++
	}
	return length
}

func truncateANSI(text string, width int) string {
	if width < 1 {
		return ""
	}
	if visibleLength(text) <= width {
		return text
	}

	var sb strings.Builder
	inEscape := false
	visible := 0
	for _, r := range text {
		if r == '\x1b' {
			inEscape = true
			sb.WriteRune(r)
			continue
		}
		if inEscape {
			sb.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}

		if visible >= width-1 {
			break
		}
		sb.WriteRune(r)
		visible++
	}

	sb.WriteString("…")
	sb.WriteString(escReset)
	return sb.String()
}
