package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deckhandai/deckhand-cli/internal/integrations"
	"github.com/deckhandai/deckhand-cli/internal/tool"
)

// CanvasTool reads courses and assignments from a Canvas LMS instance.
type CanvasTool struct {
	client *integrations.CanvasClient
}

// NewCanvasTool creates the canvas tool.
func NewCanvasTool(client *integrations.CanvasClient) *CanvasTool {
	return &CanvasTool{client: client}
}

func (t *CanvasTool) Descriptor() tool.Descriptor {
	return tool.Descriptor{
		Name:        "canvas",
		Description: "Read the user's Canvas LMS data: active courses or a course's assignments.",
		InputSchema: tool.ObjectSchema(map[string]tool.Property{
			"operation": {
				Type:        "string",
				Description: "courses=list active courses, assignments=list a course's assignments",
				Enum:        []string{"courses", "assignments"},
			},
			"course_id": {Type: "integer", Description: "Course id (assignments only)"},
		}, "operation"),
	}
}

type canvasArgs struct {
	Operation string `json:"operation"`
	CourseID  int    `json:"course_id"`
}

func (t *CanvasTool) Execute(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var args canvasArgs
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}

	switch args.Operation {
	case "courses":
		courses, err := t.client.Courses(ctx)
		if err != nil {
			return tool.Errorf("%v", err), nil
		}
		if len(courses) == 0 {
			return tool.Ok("(no active courses)"), nil
		}
		var sb strings.Builder
		for _, c := range courses {
			fmt.Fprintf(&sb, "%d  %s  (%s)\n", c.ID, c.Name, c.Code)
		}
		return tool.Ok(strings.TrimRight(sb.String(), "\n")), nil

	case "assignments":
		if args.CourseID == 0 {
			return tool.Errorf("course_id is required for operation=assignments"), nil
		}
		assignments, err := t.client.Assignments(ctx, args.CourseID)
		if err != nil {
			return tool.Errorf("%v", err), nil
		}
		if len(assignments) == 0 {
			return tool.Ok("(no assignments)"), nil
		}
		var sb strings.Builder
		for _, a := range assignments {
			due := "no due date"
			if !a.DueAt.IsZero() {
				due = a.DueAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(&sb, "%d  %s  due %s\n", a.ID, a.Name, due)
		}
		return tool.Ok(strings.TrimRight(sb.String(), "\n")), nil

	default:
		return tool.Errorf("unknown operation %q (use courses/assignments)", args.Operation), nil
	}
}
