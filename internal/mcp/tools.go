package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/options"
	"github.com/briefdesk/briefdesk/internal/webhook"
)

// requestFields are the free-text string parameters of
// briefdesk_submit_request, in form order.
var requestFields = []struct {
	name     string
	desc     string
	required bool
}{
	{"email", "Email address of the requester", true},
	{"taskName", "Short name of the task", true},
	{"client", "Client the creative is for (see the clients option list)", true},
	{"creativeType", "Creative type (see the creative_types option list)", true},
	{"briefing", "What the creative should convey", true},
	{"location", "Where the creative will run", false},
	{"product", "Product being promoted", false},
	{"commercialTriggers", "Free-text commercial triggers", false},
	{"intention", "Intention (see the intentions option list)", true},
	{"toneOfVoice", "Tone of voice (see the tones option list)", true},
	{"awarenessLevel", "Audience awareness level (see the awareness_levels option list)", true},
	{"cta", "Call to action", true},
	{"startDate", "Start date, YYYY-MM-DD", true},
	{"references", "Reference links or notes", false},
}

// registerTools registers all briefdesk MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {

	// ----- Discovery tools -----

	srv.AddTool(
		mcp.NewTool("briefdesk_list_options",
			mcp.WithDescription(
				"List every option list of the creative request form with its items. "+
					"Use this first to learn the valid values for clients, creative types, "+
					"intentions, tones and awareness levels.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		),
		s.handleListOptions,
	)

	srv.AddTool(
		mcp.NewTool("briefdesk_get_option_list",
			mcp.WithDescription("Get the items of one option list."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("list",
				mcp.Required(),
				mcp.Description("Option list name: "+strings.Join(options.Names(), ", ")),
				mcp.Enum(options.Names()...),
			),
		),
		s.handleGetOptionList,
	)

	// ----- Intake tool -----

	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Submit a creative request to the design team. Required fields must be " +
				"non-empty; list-backed fields should use values from briefdesk_list_options.",
		),
		mcp.WithToolAnnotation(mutatingAnnotation()),
	}
	for _, f := range requestFields {
		propOpts := []mcp.PropertyOption{mcp.Description(f.desc)}
		if f.required {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(f.name, propOpts...))
	}
	opts = append(opts,
		mcp.WithArray("competitiveDifferentials",
			mcp.Description("Competitive differentials (see the differentials option list)"),
			mcp.WithStringItems(),
		),
		mcp.WithArray("triggers",
			mcp.Description("Mental triggers (see the triggers option list)"),
			mcp.WithStringItems(),
		),
	)
	srv.AddTool(mcp.NewTool("briefdesk_submit_request", opts...), s.handleSubmitRequest)
}

// handleListOptions returns every option list.
func (s *MCPServer) handleListOptions(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	lists, err := s.options.All(ctx)
	if err != nil {
		return toolError("Failed to load option lists: %v", err)
	}
	return successJSON(lists)
}

// handleGetOptionList returns one option list.
func (s *MCPServer) handleGetOptionList(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	name, err := requireString(request, "list")
	if err != nil {
		return toolError("%v. Available lists: %v", err, options.Names())
	}

	items, err := s.options.Get(ctx, name)
	if err != nil {
		if errors.Is(err, options.ErrUnknownList) {
			return toolError("Option list %q not found. Available lists: %v", name, options.Names())
		}
		return toolError("Failed to load option list %q: %v", name, err)
	}
	return successJSON(model.OptionList{Name: name, Items: items})
}

// handleSubmitRequest forwards a creative request to the intake webhook.
func (s *MCPServer) handleSubmitRequest(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {

	req := model.CreativeRequest{
		Email:                    optionalString(request, "email"),
		TaskName:                 optionalString(request, "taskName"),
		Client:                   optionalString(request, "client"),
		CreativeType:             optionalString(request, "creativeType"),
		Briefing:                 optionalString(request, "briefing"),
		Location:                 optionalString(request, "location"),
		Product:                  optionalString(request, "product"),
		CommercialTriggers:       optionalString(request, "commercialTriggers"),
		CompetitiveDifferentials: optionalStringSlice(request, "competitiveDifferentials"),
		Triggers:                 optionalStringSlice(request, "triggers"),
		Intention:                optionalString(request, "intention"),
		ToneOfVoice:              optionalString(request, "toneOfVoice"),
		AwarenessLevel:           optionalString(request, "awarenessLevel"),
		CTA:                      optionalString(request, "cta"),
		StartDate:                optionalString(request, "startDate"),
		References:               optionalString(request, "references"),
	}

	if missing := req.RequiredFields(); len(missing) > 0 {
		return toolError("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if err := s.forwarder.Submit(ctx, req); err != nil {
		s.logger.Error("mcp: forward creative request failed", "task", req.TaskName, "error", err)
		if errors.Is(err, webhook.ErrNotConfigured) {
			return toolError("The request webhook is not configured on this server")
		}
		return toolError("Failed to submit request: %v", err)
	}

	s.logger.Info("mcp: creative request forwarded", "task", req.TaskName, "client", req.Client)
	return successJSON(map[string]interface{}{
		"success": true,
		"message": "Request submitted",
	})
}
