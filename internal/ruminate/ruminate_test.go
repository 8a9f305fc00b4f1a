package ruminate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/notesift/internal/models"
	"github.com/starford/notesift/internal/oracle"
	"github.com/starford/notesift/internal/testutil"
)

const answer = `Sure, here they are.

# Project: Plan trip to Europe
Description: Plan a summer trip, visit France and Italy.
Plan trip to Europe tasks:
## Book flights
## Book hotels

# Project: Lab Automation
Description: Automate the lab.
Lab Automation tasks:
## Analyze lab processes
`

func TestParseProjects(t *testing.T) {
	got := ParseProjects(answer)
	want := []Project{
		{
			Name:        "Plan trip to Europe",
			Description: "Plan a summer trip, visit France and Italy.",
			Tasks:       []string{"Book flights", "Book hotels"},
		},
		{
			Name:        "Lab Automation",
			Description: "Automate the lab.",
			Tasks:       []string{"Analyze lab processes"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestParseProjectsNoise(t *testing.T) {
	if got := ParseProjects("## orphan task\nnothing here"); len(got) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestRender(t *testing.T) {
	got := Render([]models.NoteRecord{{Timestamp: "2024-06-21T00:00:00Z", Content: "Who is Mike?"}})
	want := "2024-06-21T00:00:00Z:\nWho is Mike?\n--------------------------------\n\n"
	if got != want {
		t.Errorf("Render = %q", got)
	}
}

func TestProjectsBatches(t *testing.T) {
	var batches []int
	o := oracle.Func(func(ctx context.Context, system, user string) (string, error) {
		batches = append(batches, strings.Count(user, "----\n\n"))
		if len(batches) == 2 {
			return "", errors.New("timeout")
		}
		return fmt.Sprintf("# Project: P%d\n## t", len(batches)), nil
	})
	notes := make([]models.NoteRecord, 5)
	for i := range notes {
		notes[i] = models.NoteRecord{Timestamp: "2024-06-21T00:00:00Z", Content: fmt.Sprint(i)}
	}
	r := New(o, 2, testutil.Quiet())
	projects, err := r.Projects(context.Background(), notes)
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if !reflect.DeepEqual(batches, []int{2, 2, 1}) {
		t.Errorf("batches = %v", batches)
	}
	if len(projects) != 2 || projects[0].Name != "P1" || projects[1].Name != "P3" {
		t.Errorf("projects = %+v", projects)
	}
}
