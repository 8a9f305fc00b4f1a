// Package pipeline routes a note through the classification state machine:
// test-artifact check, class check, then follow-up questions.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/notesift/internal/oracle"
)

// State is a node of the classification state machine.
type State string

const (
	StateStart         State = "start"
	StateTestCheck     State = "test_check"
	StateClassCheck    State = "class_check"
	StateFollowupCheck State = "followup_check"
	StateDelete        State = "delete"
	StateClassified    State = "classified"
	StateAskQuestions  State = "ask_questions"
	StateUncertain     State = "uncertain"
)

// Result is the terminal outcome for one note. It is one of Delete,
// Classified, AskQuestions or Uncertain.
type Result interface {
	State() State
}

// Delete means the note looks like a test artifact.
type Delete struct{}

// Classified carries the label assigned by the Labeler.
type Classified struct {
	Label string
}

// AskQuestions carries follow-up questions for the note's author.
type AskQuestions struct {
	Questions []string
}

// Uncertain means the note needs human review.
type Uncertain struct{}

func (Delete) State() State       { return StateDelete }
func (Classified) State() State   { return StateClassified }
func (AskQuestions) State() State { return StateAskQuestions }
func (Uncertain) State() State    { return StateUncertain }

// Trace lists the states visited during one run, terminal state last.
type Trace []State

func (t Trace) String() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}

// Labeler assigns a class to note content. ok is false when no class applies.
type Labeler interface {
	Label(ctx context.Context, content string) (label string, ok bool)
}

// StaticLabeler gives every note the same label. An empty label never matches.
type StaticLabeler string

// Label returns the static label.
func (l StaticLabeler) Label(context.Context, string) (string, bool) {
	return string(l), l != ""
}

// Pipeline runs notes through the state machine. Oracle failures degrade
// to the uncertain branches and never abort a run.
type Pipeline struct {
	oracle  oracle.Oracle
	labeler Labeler
	logger  *slog.Logger
}

// New creates a Pipeline.
func New(o oracle.Oracle, labeler Labeler, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{oracle: o, labeler: labeler, logger: logger}
}

// Run classifies one note.
func (p *Pipeline) Run(ctx context.Context, content string) (Result, Trace) {
	trace := Trace{StateStart, StateTestCheck}

	if p.testVerdict(ctx, content) == oracle.Positive {
		return Delete{}, append(trace, StateDelete)
	}

	trace = append(trace, StateClassCheck)
	if p.labeler != nil {
		if label, ok := p.labeler.Label(ctx, content); ok {
			return Classified{Label: label}, append(trace, StateClassified)
		}
	}

	trace = append(trace, StateFollowupCheck)
	if qs := p.followups(ctx, content); len(qs) > 0 {
		return AskQuestions{Questions: qs}, append(trace, StateAskQuestions)
	}
	return Uncertain{}, append(trace, StateUncertain)
}

func (p *Pipeline) testVerdict(ctx context.Context, content string) oracle.Verdict {
	answer, err := p.oracle.Ask(ctx, testArtifactPrompt, content)
	if err != nil {
		p.logger.Warn("test check failed", slog.String("error", err.Error()))
		return oracle.Unknown
	}
	return oracle.DecodeVerdict(answer)
}

func (p *Pipeline) followups(ctx context.Context, content string) []string {
	answer, err := p.oracle.Ask(ctx, followupPrompt, content)
	if err != nil {
		p.logger.Warn("followup check failed", slog.String("error", err.Error()))
		return nil
	}
	return ParseQuestions(answer)
}

// ParseQuestions extracts "- " prefixed lines from an oracle answer.
func ParseQuestions(answer string) []string {
	var out []string
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimLeft(line, " \t")
		q, ok := strings.CutPrefix(line, "- ")
		if !ok {
			continue
		}
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
