package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	stageStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// StyledHandler renders events with colors for interactive terminals.
type StyledHandler struct {
	writer io.Writer
}

func NewStyledHandler(writer io.Writer) *StyledHandler {
	return &StyledHandler{writer: writer}
}

// HandlerFor returns a styled handler when the file is an interactive
// terminal and a plain one otherwise.
func HandlerFor(f *os.File) Handler {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return NewStyledHandler(f)
	}
	return NewSimpleHandler(f)
}

func (h *StyledHandler) Handle(event Event) {
	switch event.Type {
	case EventAnalyzeStart:
		fmt.Fprintf(h.writer, "%s %s\n", stageStyle.Render("scan"), event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "%s excluding %s\n", stageStyle.Render("scan"), pathStyle.Render(event.Info))
		}

	case EventArchiveExtracted:
		fmt.Fprintf(h.writer, "%s %s entries %s\n",
			stageStyle.Render("zip"), countStyle.Render(fmt.Sprint(event.FileCount)), pathStyle.Render(event.Path))

	case EventProjectsDiscovered:
		fmt.Fprintf(h.writer, "%s %s project roots\n",
			stageStyle.Render("proj"), countStyle.Render(fmt.Sprint(event.Count)))

	case EventFilesScanned:
		fmt.Fprintf(h.writer, "%s %s files in %.1fs\n",
			stageStyle.Render("file"), countStyle.Render(fmt.Sprint(event.FileCount)), event.Duration.Seconds())

	case EventProjectAnalyzed:
		fmt.Fprintf(h.writer, "%s project %d %s %s commits\n",
			stageStyle.Render("git"), event.Tag, pathStyle.Render(event.Path), countStyle.Render(fmt.Sprint(event.Count)))

	case EventDuplicatesMarked:
		fmt.Fprintf(h.writer, "%s %s duplicates\n",
			stageStyle.Render("dup"), countStyle.Render(fmt.Sprint(event.Count)))

	case EventAnalyzeComplete:
		fmt.Fprintf(h.writer, "%s %s files, %s projects in %.1fs\n",
			stageStyle.Render("done"),
			countStyle.Render(fmt.Sprint(event.FileCount)),
			countStyle.Render(fmt.Sprint(event.Count)),
			event.Duration.Seconds())

	case EventInfo:
		fmt.Fprintf(h.writer, "%s\n", warningStyle.Render(event.Info))
	}
}
