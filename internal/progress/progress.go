package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Event types reported by the analysis pipeline
type EventType int

const (
	EventAnalyzeStart EventType = iota
	EventArchiveExtracted
	EventProjectsDiscovered
	EventFilesScanned
	EventProjectAnalyzed
	EventDuplicatesMarked
	EventAnalyzeComplete
	EventInfo
)

// Event represents something that happened during analysis
type Event struct {
	Type      EventType
	Path      string
	Tag       int
	Info      string
	FileCount int
	Count     int
	Duration  time.Duration
}

// Reporter is the interface the pipeline uses to report events
type Reporter interface {
	Report(event Event)
}

// Handler processes events and produces output
type Handler interface {
	Handle(event Event)
}

// Progress is the centralized verbose system
type Progress struct {
	enabled bool
	handler Handler
}

// New creates a new progress reporter
func New(enabled bool, handler Handler) *Progress {
	if handler == nil {
		handler = NewSimpleHandler(os.Stderr)
	}
	return &Progress{
		enabled: enabled,
		handler: handler,
	}
}

// Report sends an event to the handler (only if enabled)
func (p *Progress) Report(event Event) {
	if !p.enabled {
		return
	}
	p.handler.Handle(event)
}

// Convenience methods for the pipeline to report events

func (p *Progress) AnalyzeStart(path string, excludePatterns []string) {
	p.Report(Event{
		Type: EventAnalyzeStart,
		Path: path,
		Info: strings.Join(excludePatterns, ", "),
	})
}

func (p *Progress) ArchiveExtracted(files int, path string) {
	p.Report(Event{
		Type:      EventArchiveExtracted,
		Path:      path,
		FileCount: files,
	})
}

func (p *Progress) ProjectsDiscovered(count int) {
	p.Report(Event{
		Type:  EventProjectsDiscovered,
		Count: count,
	})
}

func (p *Progress) FilesScanned(files int, duration time.Duration) {
	p.Report(Event{
		Type:      EventFilesScanned,
		FileCount: files,
		Duration:  duration,
	})
}

func (p *Progress) ProjectAnalyzed(tag int, root string, commits int) {
	p.Report(Event{
		Type:  EventProjectAnalyzed,
		Tag:   tag,
		Path:  root,
		Count: commits,
	})
}

func (p *Progress) DuplicatesMarked(count int) {
	p.Report(Event{
		Type:  EventDuplicatesMarked,
		Count: count,
	})
}

func (p *Progress) AnalyzeComplete(files, projects int, duration time.Duration) {
	p.Report(Event{
		Type:      EventAnalyzeComplete,
		FileCount: files,
		Count:     projects,
		Duration:  duration,
	})
}

func (p *Progress) Info(message string) {
	p.Report(Event{
		Type: EventInfo,
		Info: message,
	})
}

// SimpleHandler outputs events as simple lines
type SimpleHandler struct {
	writer io.Writer
}

func NewSimpleHandler(writer io.Writer) *SimpleHandler {
	return &SimpleHandler{writer: writer}
}

func (h *SimpleHandler) Handle(event Event) {
	switch event.Type {
	case EventAnalyzeStart:
		fmt.Fprintf(h.writer, "[SCAN] Starting: %s\n", event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "[SCAN] Excluding: %s\n", event.Info)
		}

	case EventArchiveExtracted:
		fmt.Fprintf(h.writer, "[ZIP]  Extracted %d entries to %s\n", event.FileCount, event.Path)

	case EventProjectsDiscovered:
		fmt.Fprintf(h.writer, "[PROJ] Discovered %d project roots\n", event.Count)

	case EventFilesScanned:
		fmt.Fprintf(h.writer, "[FILE] Classified %d files in %.1fs\n",
			event.FileCount, event.Duration.Seconds())

	case EventProjectAnalyzed:
		fmt.Fprintf(h.writer, "[GIT]  Project %d (%s): %d commits\n",
			event.Tag, event.Path, event.Count)

	case EventDuplicatesMarked:
		fmt.Fprintf(h.writer, "[DUP]  Marked %d duplicate files\n", event.Count)

	case EventAnalyzeComplete:
		fmt.Fprintf(h.writer, "[DONE] %d files, %d projects in %.1fs\n",
			event.FileCount, event.Count, event.Duration.Seconds())

	case EventInfo:
		fmt.Fprintf(h.writer, "[INFO] %s\n", event.Info)
	}
}

// NullHandler discards all events (for disabled verbose mode)
type NullHandler struct{}

func NewNullHandler() *NullHandler {
	return &NullHandler{}
}

func (h *NullHandler) Handle(event Event) {
	// Do nothing
}
