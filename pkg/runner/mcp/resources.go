package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerRecentResource(srv, svc)
	registerEventsResource(srv, svc)
	registerSessionResource(srv, svc)
	registerEntryTemplate(srv, svc)
	registerDayTemplate(srv, svc)
}

func registerRecentResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"daybook://entries",
		"Recent entries",
		mcp.WithResourceDescription("The most recent journal entries, newest first."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, total, err := svc.ListEntries(ctx, ListOptions{})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"entries": entries,
			"count":   len(entries),
			"total":   total,
		})
	})
}

func registerEventsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"daybook://events",
		"Calendar events",
		mcp.WithResourceDescription("Calendar events created from journal entries."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		events, err := svc.Events(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"events": events,
			"count":  len(events),
		})
	})
}

func registerSessionResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"daybook://session",
		"Session",
		mcp.WithResourceDescription("Whether the server is signed in, and as whom."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return encodeResourceJSON(request.Params.URI, svc.Session(ctx))
	})
}

func registerEntryTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"daybook://entries/{id}",
		"Entry details",
		mcp.WithTemplateDescription("A single journal entry."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw := templateArg(request, "id")
		id, err := ParseID(raw)
		if err != nil {
			return nil, err
		}
		dto, err := svc.EntryByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"entry": dto})
	})
}

func registerDayTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"daybook://days/{date}",
		"Entries for a day",
		mcp.WithTemplateDescription("Entries written for a day given as YYYY-MM-DD."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := templateArg(request, "date")
		if date == "" {
			return nil, fmt.Errorf("date is required")
		}
		entries, total, err := svc.ListEntries(ctx, ListOptions{Date: date})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"date":    date,
			"entries": entries,
			"count":   len(entries),
			"total":   total,
		})
	})
}

// templateArg reads a URI template variable. Depending on the client the
// value arrives as a string or a single-element list.
func templateArg(request mcp.ReadResourceRequest, name string) string {
	switch v := request.Params.Arguments[name].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
