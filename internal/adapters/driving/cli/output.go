package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/meows-bio/meows/internal/core/domain"
	"github.com/meows-bio/meows/internal/core/ports/driven"
	"github.com/meows-bio/meows/internal/core/ports/driving"
)

var (
	styleStage     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleOK        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFail      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleMilestone = lipgloss.NewStyle().Bold(true)
	styleDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Ensure Printer implements the interface.
var _ driven.RunObserver = (*Printer)(nil)

// Printer writes pipeline progress for people. Styling is applied only
// when the destination is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// StageStarted prints the stage heading.
func (p *Printer) StageStarted(stage domain.Stage) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(styleStage, "==>"), stage.Description())
}

// StageFinished prints the stage result and its duration.
func (p *Printer) StageFinished(stage domain.Stage, elapsed time.Duration, err error) {
	took := p.paint(styleDim, elapsed.Round(time.Millisecond).String())
	if err != nil {
		fmt.Fprintf(p.w, "%s %s failed after %s\n", p.paint(styleFail, "x"), stage.Description(), took)
		return
	}
	fmt.Fprintf(p.w, "%s %s (%s)\n", p.paint(styleOK, "ok"), stage, took)
}

// Milestone prints a result line under the current stage.
func (p *Printer) Milestone(_ domain.Stage, message string) {
	fmt.Fprintf(p.w, "    %s\n", p.paint(styleMilestone, message))
}

// Summary prints the closing line for a run.
func (p *Printer) Summary(report *driving.RunReport, err error) {
	if report == nil {
		return
	}
	if err == nil {
		fmt.Fprintf(p.w, "\n%s Run %s finished. Artifacts are in %s\n",
			p.paint(styleOK, "Done."), report.RunID, report.Layout.Dir)
		return
	}

	fmt.Fprintf(p.w, "\n%s Run %s stopped during %s.\n",
		p.paint(styleFail, "Failed."), report.RunID, report.FailedStage)
	if report.Layout.Dir != "" {
		fmt.Fprintf(p.w, "Partial artifacts are in %s\n", report.Layout.Dir)
	}
}
