// Package render provides output formatting for CLI commands.
// Separates presentation from the coordination core.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/joss/cockpit/internal/capability"
	"github.com/joss/cockpit/internal/discovery"
	"github.com/joss/cockpit/internal/dispatch"
	"github.com/joss/cockpit/internal/history"
	"github.com/joss/cockpit/internal/session"
	cstrings "github.com/joss/cockpit/internal/strings"
)

// Writer wraps an io.Writer with formatting utilities.
type Writer struct {
	out io.Writer
}

// NewWriter creates a Writer that writes to the given io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w}
}

// Stdout returns a Writer that writes to os.Stdout.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Print writes formatted text.
func (w *Writer) Print(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes formatted text with newline.
func (w *Writer) Println(format string, args ...any) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Line writes a blank line.
func (w *Writer) Line() {
	fmt.Fprintln(w.out)
}

// Item writes an indented item line.
func (w *Writer) Item(format string, args ...any) {
	fmt.Fprintf(w.out, "  "+format+"\n", args...)
}

// Agents formats the capability table for the known agents.
func (w *Writer) Agents() {
	w.Println(color.CyanString("Known Agents"))
	w.Println(strings.Repeat("─", 60))
	for _, agent := range capability.Known() {
		profile := capability.Get(agent)
		enabled := 0
		for _, f := range capability.Flags {
			if profile.Flag(f) {
				enabled++
			}
		}
		w.Item("%-10s %d/%d capabilities", agent, enabled, len(capability.Flags))
	}
}

// Capabilities formats one agent's full capability profile.
func (w *Writer) Capabilities(agent session.AgentType) {
	w.Println(color.CyanString("%s", agent))
	profile := capability.Get(agent)
	for _, f := range capability.Flags {
		mark := color.RedString("✗")
		if profile.Flag(f) {
			mark = color.GreenString("✓")
		}
		w.Item("%s %s", mark, f)
	}
}

// ExecResult formats a dispatcher result; stderr is dimmed, failures are red.
func (w *Writer) ExecResult(res dispatch.Result) {
	if res.Stdout != "" {
		w.Print("%s", res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			w.Line()
		}
	}
	if res.Stderr != "" {
		w.Print("%s", color.HiBlackString("%s", res.Stderr))
		if !strings.HasSuffix(res.Stderr, "\n") {
			w.Line()
		}
	}
	if !res.Ok() {
		w.Println(color.RedString("exit %d", res.ExitCode))
	}
}

// Sessions formats the history listing.
func (w *Writer) Sessions(sessions []history.SessionSummary) {
	if len(sessions) == 0 {
		w.Println("No saved sessions")
		return
	}
	w.Println(color.CyanString("Saved Sessions"))
	w.Println(strings.Repeat("─", 60))
	for _, s := range sessions {
		w.Item("%-26s %-10s %2d tabs  %s", s.ID, s.AgentType, s.TabCount, cstrings.Truncate(s.Name, 24))
	}
}

// Discovered formats a session-discovery scan.
func (w *Writer) Discovered(found []discovery.Discovered) {
	if len(found) == 0 {
		w.Println("No agent sessions found")
		return
	}
	w.Println(color.CyanString("Discovered Sessions"))
	w.Println(strings.Repeat("─", 60))
	for _, d := range found {
		w.Item("%-10s %s  %s", d.Agent, d.ModTime.Format("2006-01-02 15:04"), cstrings.Truncate(d.Path, 60))
	}
}
