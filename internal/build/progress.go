package build

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Phase is a step of one target build.
type Phase int

const (
	PhaseImporting  Phase = iota // one event per loaded unit
	PhaseResolving               // dependency resolution started
	PhaseReordering              // forced placement applied
	PhaseExporting               // one event per unit written to the artifact
	PhaseMerged                  // artifact assembled; Count is the unit total
	PhaseGenerating              // artifact handed to the writer
	PhaseDone                    // artifact written; Count is the unit total
	PhaseFailed                  // target aborted; Message holds the error
)

var phaseNames = [...]string{
	PhaseImporting:  "Importing",
	PhaseResolving:  "Resolving",
	PhaseReordering: "Re-ordering",
	PhaseExporting:  "Exporting",
	PhaseMerged:     "Merged",
	PhaseGenerating: "Generating",
	PhaseDone:       "Done",
	PhaseFailed:     "Failed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ProgressEvent reports build progress for one target.
type ProgressEvent struct {
	Target  string // target name; empty for single-target runs
	Phase   Phase
	Unit    string // unit id for Importing and Exporting
	Output  string // output name for Generating and Done
	Count   int    // merged unit count for Merged and Done
	Message string // error text for Failed
}

var (
	targetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#50C878")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
)

// FormatProgress renders an event as one status line.
func FormatProgress(ev ProgressEvent) string {
	var line string
	switch ev.Phase {
	case PhaseImporting:
		line = phaseStyle.Render("Importing:") + " " + ev.Unit
	case PhaseResolving:
		line = phaseStyle.Render("Resolving dependencies...")
	case PhaseReordering:
		line = phaseStyle.Render("Re-ordering files...")
	case PhaseExporting:
		line = phaseStyle.Render("Exporting:") + " " + ev.Unit
	case PhaseMerged:
		line = doneStyle.Render(fmt.Sprintf("Total files merged: %d", ev.Count))
	case PhaseGenerating:
		line = phaseStyle.Render("Generating:") + " " + ev.Output
	case PhaseDone:
		line = doneStyle.Render("Wrote:") + " " + ev.Output
	case PhaseFailed:
		line = failStyle.Render("Failed:") + " " + ev.Message
	default:
		line = ev.Phase.String()
	}
	if ev.Target != "" {
		line = targetStyle.Render("["+ev.Target+"]") + " " + line
	}
	return line
}
