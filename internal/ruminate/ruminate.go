// Package ruminate asks the oracle to infer projects and their tasks from
// the cached notes.
package ruminate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/oracle"
)

// DefaultNotesPerAsk is the batch size used when none is configured.
const DefaultNotesPerAsk = 20

const projectsPrompt = `You are an expert in analyzing notes that pertain to projects and tasks within projects.
Based on the content of the notes, can you provide a list of projects and perhaps their tasks?
For each project, a new line with
# Project: at the beginning of each project name, which should be 2 to 5 words long, then a colon (:)
On a new line, Description: and a one to two sentence project description,
then on a new line the project name followed by the word tasks and a colon (:),
and, on a new line and then the tasks for that project, one task per line each line starting with ##.

Example:
# Project: Plan trip to Europe
Description: Plan a trip to Europe for the summer, make sure we visit France and Italy.
Plan trip to Europe tasks:
## Book flights
## Book hotels
## Plan itinerary

# Project: Von Open Source Lab Automation
Description: Automate the lab by using AI to understand and reduce the burden of lab processes.
Von Open Source Lab Automation tasks:
## Analyze lab processes
## Design AI system
## Automate tracking of projects in the lab

Evaluate the following notes and provide a list of projects and tasks.`

const noteSeparator = "--------------------------------"

// Project is one inferred project.
type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tasks       []string `json:"tasks,omitempty"`
}

// Ruminator batches notes into project extraction prompts.
type Ruminator struct {
	oracle      oracle.Oracle
	notesPerAsk int
	logger      *slog.Logger
}

// New creates a Ruminator. notesPerAsk <= 0 selects DefaultNotesPerAsk.
func New(o oracle.Oracle, notesPerAsk int, logger *slog.Logger) *Ruminator {
	if notesPerAsk <= 0 {
		notesPerAsk = DefaultNotesPerAsk
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ruminator{oracle: o, notesPerAsk: notesPerAsk, logger: logger}
}

// Render formats notes the way they are sent to the oracle.
func Render(notes []models.NoteRecord) string {
	var sb strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&sb, "%s:\n%s\n%s\n\n", n.Timestamp, n.Content, noteSeparator)
	}
	return sb.String()
}

// Projects asks the oracle about each batch of notes and returns every
// project it named, in answer order. Failed batches are logged and skipped.
func (r *Ruminator) Projects(ctx context.Context, notes []models.NoteRecord) ([]Project, error) {
	var out []Project
	for start := 0; start < len(notes); start += r.notesPerAsk {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		end := min(start+r.notesPerAsk, len(notes))
		answer, err := r.oracle.Ask(ctx, projectsPrompt, Render(notes[start:end]))
		if err != nil {
			r.logger.Warn("ruminate: batch failed",
				slog.Int("first", start),
				slog.Int("notes", end-start),
				slog.String("error", err.Error()))
			continue
		}
		projects := ParseProjects(answer)
		r.logger.Debug("ruminate: batch done", slog.Int("first", start), slog.Int("projects", len(projects)))
		out = append(out, projects...)
	}
	return out, nil
}

// ParseProjects decodes "# Project:", "Description:" and "## task" lines.
// Lines outside a project are ignored.
func ParseProjects(answer string) []Project {
	var (
		out []Project
		cur *Project
	)
	for _, raw := range strings.Split(answer, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "# Project:"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "# Project:"))
			out = append(out, Project{Name: strings.TrimSuffix(name, ":")})
			cur = &out[len(out)-1]
		case cur == nil:
			continue
		case strings.HasPrefix(line, "Description:"):
			cur.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		case strings.HasPrefix(line, "##"):
			if task := strings.TrimSpace(strings.TrimLeft(line, "#")); task != "" {
				cur.Tasks = append(cur.Tasks, task)
			}
		}
	}
	return out
}
