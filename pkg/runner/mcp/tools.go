package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/daybook/pkg/calendar"
	"tableflip.dev/daybook/pkg/client"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(listEntriesTool(), listEntriesHandler(svc))
	srv.AddTool(getEntryTool(), getEntryHandler(svc))
	srv.AddTool(createEntryTool(), createEntryHandler(svc))
	srv.AddTool(updateEntryTool(), updateEntryHandler(svc))
	srv.AddTool(deleteEntryTool(), deleteEntryHandler(svc))
	srv.AddTool(syncEntryTool(), syncEntryHandler(svc))
	srv.AddTool(syncAllTool(), syncAllHandler(svc))
	srv.AddTool(listEventsTool(), listEventsHandler(svc))
	srv.AddTool(exportEntriesTool(), exportEntriesHandler(svc))
}

func idParam() mcp.ToolOption {
	return mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Entry identifier."),
		mcp.Min(1),
	)
}

type idArgs struct {
	ID int64 `json:"id"`
}

func bindID(request mcp.CallToolRequest) (int64, error) {
	var args idArgs
	if err := request.BindArguments(&args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %v", err)
	}
	if args.ID <= 0 {
		return 0, ErrInvalidID
	}
	return args.ID, nil
}

func listEntriesTool() mcp.Tool {
	return mcp.NewTool(
		"list_entries",
		mcp.WithDescription("List journal entries, newest first, optionally for a single day."),
		mcp.WithString("date",
			mcp.Description("Optional day filter as YYYY-MM-DD."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 50)."),
			mcp.Min(1),
			mcp.Max(100),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of entries to skip."),
			mcp.Min(0),
		),
	)
}

func listEntriesHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := ListOptions{
			Date:   request.GetString("date", ""),
			Limit:  request.GetInt("limit", 50),
			Offset: request.GetInt("offset", 0),
		}
		entries, total, err := svc.ListEntries(ctx, opts)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"date":    opts.Date,
			"entries": entries,
			"count":   len(entries),
			"total":   total,
		})
	}
}

func getEntryTool() mcp.Tool {
	return mcp.NewTool(
		"get_entry",
		mcp.WithDescription("Fetch a single entry by identifier."),
		idParam(),
	)
}

func getEntryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := bindID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		dto, err := svc.EntryByID(ctx, id)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(dto)
	}
}

type entryArgs struct {
	ID      int64   `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Date    *string `json:"date"`
}

func (a entryArgs) input() EntryInput {
	return EntryInput{Title: a.Title, Content: a.Content, Date: a.Date}
}

func createEntryTool() mcp.Tool {
	return mcp.NewTool(
		"create_entry",
		mcp.WithDescription("Write a new journal entry."),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day the entry belongs to, YYYY-MM-DD."),
		),
		mcp.WithString("title",
			mcp.Description("Optional title, at most 200 characters."),
		),
		mcp.WithString("content",
			mcp.Description("Entry body."),
		),
	)
}

func createEntryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args entryArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Date == nil {
			return mcp.NewToolResultError("Date is required"), nil
		}
		dto, err := svc.CreateEntry(ctx, args.input())
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(dto)
	}
}

func updateEntryTool() mcp.Tool {
	return mcp.NewTool(
		"update_entry",
		mcp.WithDescription("Change an entry. Fields that are left out keep their value."),
		idParam(),
		mcp.WithString("title",
			mcp.Description("New title."),
		),
		mcp.WithString("content",
			mcp.Description("New body."),
		),
		mcp.WithString("date",
			mcp.Description("New day, YYYY-MM-DD."),
		),
	)
}

func updateEntryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args entryArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.ID <= 0 {
			return mcp.NewToolResultError(ErrInvalidID.Error()), nil
		}
		dto, err := svc.UpdateEntry(ctx, args.ID, args.input())
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(dto)
	}
}

func deleteEntryTool() mcp.Tool {
	return mcp.NewTool(
		"delete_entry",
		mcp.WithDescription("Delete an entry permanently."),
		idParam(),
	)
}

func deleteEntryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := bindID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteEntry(ctx, id); err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{"id": id, "deleted": true})
	}
}

func syncEntryTool() mcp.Tool {
	return mcp.NewTool(
		"sync_entry",
		mcp.WithDescription("Push one entry to the calendar."),
		idParam(),
	)
}

func syncEntryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := bindID(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		msg, dto, err := svc.SyncEntry(ctx, id)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{"message": msg, "entry": dto})
	}
}

func syncAllTool() mcp.Tool {
	return mcp.NewTool(
		"sync_all",
		mcp.WithDescription("Push every entry to the calendar and report the counts."),
	)
}

func syncAllHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := svc.SyncAll(ctx)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"summary": calendar.Summary(res),
			"result":  res,
		})
	}
}

func listEventsTool() mcp.Tool {
	return mcp.NewTool(
		"list_events",
		mcp.WithDescription("List the calendar events created from journal entries."),
	)
}

func listEventsHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, err := svc.Events(ctx)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"events": events,
			"count":  len(events),
		})
	}
}

func exportEntriesTool() mcp.Tool {
	return mcp.NewTool(
		"export_entries",
		mcp.WithDescription("Build a Shortcuts link that adds the given entries to Notes."),
		mcp.WithArray("ids",
			mcp.Required(),
			mcp.Description("Entry identifiers, in the order they should appear."),
			mcp.Items(map[string]any{"type": "integer"}),
		),
	)
}

func exportEntriesHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			IDs []int64 `json:"ids"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if len(args.IDs) == 0 {
			return mcp.NewToolResultError("ids is required"), nil
		}
		url, err := svc.Export(ctx, args.IDs)
		if err != nil {
			return toolError(err), nil
		}
		return toJSONResult(map[string]any{
			"url":   url,
			"count": len(args.IDs),
		})
	}
}

// toolError reports err to the client. A rejected session has no message of
// its own, so it is named explicitly.
func toolError(err error) *mcp.CallToolResult {
	msg := client.Message(err)
	if msg == "" {
		msg = "not signed in: run `daybook login` first"
	}
	return mcp.NewToolResultError(msg)
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
