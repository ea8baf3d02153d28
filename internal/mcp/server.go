package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ldi/gotask/internal/planner"
	"github.com/ldi/gotask/pkg/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server.
func NewServer(p *planner.Planner) *server.MCPServer {
	s := server.NewMCPServer("gotask", "0.1.0")

	// Board
	s.AddTool(mcp.NewTool("list_week",
		mcp.WithDescription("Show the current week: seven weekday blocks, then future days in date order."),
	), listWeekHandler(p))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks."),
		mcp.WithBoolean("include_completed", mcp.Description("Include completed tasks (default true)")),
	), listTasksHandler(p))

	// Task Management
	s.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task. Dates before the current week are rejected."),
		mcp.WithString("text", mcp.Description("Task text"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD (defaults to today)")),
		mcp.WithBoolean("important", mcp.Description("Mark as important")),
		mcp.WithBoolean("pinned", mcp.Description("Pin the task so it is never pruned")),
		mcp.WithString("color", mcp.Description("Text color, e.g. #ff0000")),
		mcp.WithString("font_style", mcp.Description("normal|italic")),
		mcp.WithString("font_weight", mcp.Description("normal|bold")),
		mcp.WithString("highlight_color", mcp.Description("Highlight the task with this color")),
	), addTaskHandler(p))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of a task. Omitted fields are unchanged."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("text", mcp.Description("New text")),
		mcp.WithString("date", mcp.Description("New day as YYYY-MM-DD")),
		mcp.WithBoolean("completed", mcp.Description("Completed flag")),
		mcp.WithBoolean("important", mcp.Description("Important flag")),
		mcp.WithString("color", mcp.Description("Text color")),
		mcp.WithString("font_style", mcp.Description("normal|italic")),
		mcp.WithString("font_weight", mcp.Description("normal|bold")),
		mcp.WithBoolean("highlight", mcp.Description("Highlight flag")),
		mcp.WithString("highlight_color", mcp.Description("Highlight color")),
	), updateTaskHandler(p))

	s.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task completed, or not completed with completed=false."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithBoolean("completed", mcp.Description("Completed flag (default true)")),
	), completeTaskHandler(p))

	s.AddTool(mcp.NewTool("toggle_important",
		mcp.WithDescription("Flip the important flag of a task."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), toggleImportantHandler(p))

	s.AddTool(mcp.NewTool("toggle_pin",
		mcp.WithDescription("Flip the pinned flag of a task. Pinned tasks survive weekly pruning."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), togglePinHandler(p))

	s.AddTool(mcp.NewTool("duplicate_task",
		mcp.WithDescription("Copy a task under a new id. The copy is not completed."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
	), duplicateTaskHandler(p))

	s.AddTool(mcp.NewTool("move_task",
		mcp.WithDescription("Move a task to another day, given a weekday name from list_week or a future day key."),
		mcp.WithString("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("day", mcp.Description("Day key, e.g. 'Friday' or '06/20/2024'"), mcp.Required()),
	), moveTaskHandler(p))

	s.AddTool(mcp.NewTool("delete_tasks",
		mcp.WithDescription("Delete tasks by id."),
		mcp.WithString("ids", mcp.Description("Comma-separated task ids"), mcp.Required()),
	), deleteTasksHandler(p))

	// Selection
	s.AddTool(mcp.NewTool("select_task",
		mcp.WithDescription("Toggle a task, or every task of a day, in the session's selection."),
		mcp.WithString("id", mcp.Description("Task id")),
		mcp.WithString("day", mcp.Description("Day key; toggles all tasks of that day")),
		mcp.WithString("session_id", mcp.Description("Session ID for the selection (defaults to 'default').")),
	), selectTaskHandler(p))

	s.AddTool(mcp.NewTool("delete_selected",
		mcp.WithDescription("Delete every selected task and clear the selection."),
		mcp.WithString("session_id", mcp.Description("Session ID (defaults to 'default').")),
	), deleteSelectedHandler(p))

	// Settings
	s.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Get device settings."),
	), getSettingsHandler(p))

	s.AddTool(mcp.NewTool("update_settings",
		mcp.WithDescription("Update device settings. Omitted fields are unchanged."),
		mcp.WithString("theme", mcp.Description("system|light|dark")),
		mcp.WithNumber("font_size", mcp.Description("Font size (8-48)")),
		mcp.WithBoolean("show_preview", mcp.Description("Show task preview")),
		mcp.WithString("button_size", mcp.Description("small|medium|large")),
		mcp.WithString("language", mcp.Description("pt|en")),
		mcp.WithBoolean("auto_save", mcp.Description("Autosave while editing")),
	), updateSettingsHandler(p))

	s.AddTool(mcp.NewTool("dismiss_tutorial",
		mcp.WithDescription("Remove the onboarding task for good."),
	), dismissTutorialHandler(p))

	s.AddTool(mcp.NewTool("sync_status",
		mcp.WithDescription("Report the sync state: signed-in user, push counts and the last push error."),
	), syncStatusHandler(p))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func listWeekHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(p.Board())
	}
}

func listTasksHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		includeCompleted := mcp.ParseBoolean(request, "include_completed", true)

		list := []models.Task{}
		for _, t := range p.Tasks() {
			if t.Completed && !includeCompleted {
				continue
			}
			list = append(list, t)
		}
		return jsonResult(map[string]any{"tasks": list})
	}
}

func addTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := planner.NewTask{
			Text:       mcp.ParseString(request, "text", ""),
			Important:  mcp.ParseBoolean(request, "important", false),
			Pinned:     mcp.ParseBoolean(request, "pinned", false),
			Color:      mcp.ParseString(request, "color", ""),
			FontStyle:  models.FontStyle(mcp.ParseString(request, "font_style", "")),
			FontWeight: models.FontWeight(mcp.ParseString(request, "font_weight", "")),
		}
		if hc := mcp.ParseString(request, "highlight_color", ""); hc != "" {
			in.Highlight = true
			in.HighlightColor = hc
		}
		if date := mcp.ParseString(request, "date", ""); date != "" {
			d, err := p.ParseDate(date)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in.Date = d
		}

		t, err := p.AddTask(ctx, in)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func updateTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		args, _ := request.Params.Arguments.(map[string]any)

		var patch models.TaskPatch
		if text, ok := args["text"].(string); ok {
			patch.Text = &text
		}
		if date, ok := args["date"].(string); ok {
			d, err := p.ParseDate(date)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			patch.Date = &d
		}
		if v, ok := args["completed"].(bool); ok {
			patch.Completed = &v
		}
		if v, ok := args["important"].(bool); ok {
			patch.Important = &v
		}
		if v, ok := args["color"].(string); ok {
			patch.Color = &v
		}
		if v, ok := args["font_style"].(string); ok {
			fs := models.FontStyle(v)
			patch.FontStyle = &fs
		}
		if v, ok := args["font_weight"].(string); ok {
			fw := models.FontWeight(v)
			patch.FontWeight = &fw
		}
		if v, ok := args["highlight"].(bool); ok {
			patch.Highlight = &v
		}
		if v, ok := args["highlight_color"].(string); ok {
			patch.HighlightColor = &v
		}
		if patch.IsEmpty() {
			return mcp.NewToolResultError("No fields to update"), nil
		}

		t, err := p.EditTask(ctx, id, patch)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func completeTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		done := mcp.ParseBoolean(request, "completed", true)

		t, err := p.SetCompleted(ctx, id, done)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func toggleImportantHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := p.ToggleImportant(ctx, mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func togglePinHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := p.TogglePin(ctx, mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func duplicateTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		t, err := p.Duplicate(ctx, mcp.ParseString(request, "id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func moveTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := mcp.ParseString(request, "id", "")
		day := mcp.ParseString(request, "day", "")

		t, err := p.Reschedule(ctx, id, day)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(t)
	}
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func deleteTasksHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids := splitIDs(mcp.ParseString(request, "ids", ""))
		if len(ids) == 0 {
			return mcp.NewToolResultError("No task ids given"), nil
		}

		n, err := p.Delete(ctx, ids...)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %d task(s)", n)), nil
	}
}

func selectTaskHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")
		id := mcp.ParseString(request, "id", "")
		day := mcp.ParseString(request, "day", "")

		switch {
		case id != "":
			if _, err := p.ToggleSelected(sessionID, id); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		case day != "":
			p.ToggleDaySelected(sessionID, day)
		default:
			return mcp.NewToolResultError("Either id or day is required"), nil
		}
		return jsonResult(map[string]any{"session_id": sessionID, "selected": p.Selected(sessionID)})
	}
}

func deleteSelectedHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := mcp.ParseString(request, "session_id", "default")

		n, err := p.DeleteSelected(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %d selected task(s) for session '%s'", n, sessionID)), nil
	}
}

func getSettingsHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(p.Settings())
	}
}

func updateSettingsHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s := p.Settings()
		args, _ := request.Params.Arguments.(map[string]any)

		if v, ok := args["theme"].(string); ok {
			s.Theme = models.Theme(v)
		}
		if _, ok := args["font_size"]; ok {
			s.FontSize = mcp.ParseInt(request, "font_size", s.FontSize)
		}
		if v, ok := args["show_preview"].(bool); ok {
			s.ShowPreview = v
		}
		if v, ok := args["button_size"].(string); ok {
			s.ButtonSize = models.ButtonSize(v)
		}
		if v, ok := args["language"].(string); ok {
			s.Language = v
		}
		if v, ok := args["auto_save"].(bool); ok {
			s.AutoSave = v
		}

		updated, err := p.UpdateSettings(ctx, s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(updated)
	}
}

func dismissTutorialHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := p.DismissTutorial(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Tutorial dismissed"), nil
	}
}

func syncStatusHandler(p *planner.Planner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(p.Status())
	}
}
