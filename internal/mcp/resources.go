package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/options"
)

const (
	optionsURI       = "briefdesk://options"
	optionListPrefix = optionsURI + "/"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// briefdesk://options: every option list
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			optionsURI,
			"Intake Option Lists",
			mcp.WithResourceDescription(
				"All option lists offered by the creative request form: "+
					"recipient emails, clients, creative types, differentials, "+
					"triggers, intentions, tones of voice and awareness levels.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleOptionsResource,
	)

	// -------------------------------------------------------------------
	// briefdesk://options/{list}: one option list (template)
	// -------------------------------------------------------------------
	srv.AddResourceTemplate(
		mcp.NewResourceTemplate(
			optionListPrefix+"{list}",
			"Intake Option List",
			mcp.WithTemplateDescription(
				"The items of one option list. Valid list names: "+strings.Join(options.Names(), ", ")+".",
			),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleOptionListResource,
	)
}

// handleOptionsResource returns every option list.
func (s *MCPServer) handleOptionsResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	lists, err := s.options.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load option lists: %w", err)
	}
	return jsonContents(optionsURI, lists)
}

// handleOptionListResource returns the items of the list named in the URI.
func (s *MCPServer) handleOptionListResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	uri := request.Params.URI
	name := strings.TrimPrefix(uri, optionListPrefix)
	if name == "" || name == uri {
		return nil, fmt.Errorf("invalid option list URI %q: expected %s{list}", uri, optionListPrefix)
	}

	items, err := s.options.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("option list %q: %w (available: %v)", name, err, options.Names())
	}
	return jsonContents(uri, model.OptionList{Name: name, Items: items})
}
