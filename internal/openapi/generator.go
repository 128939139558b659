package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/briefdesk/briefdesk/internal/options"
)

// APIPrefix is the path prefix of every JSON API route.
const APIPrefix = "/api/v1"

// Generate builds the OpenAPI 3.1 document describing the briefdesk HTTP API.
func Generate(baseURL, version string) *openapi3.T {
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Briefdesk API",
			Description: "Creative request intake, option lists, chat relay and admin console API.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Token returned by POST /api/v1/admin/session. Only the most recent login is valid.",
		},
	}

	addComponentSchemas(doc)

	doc.Paths = openapi3.NewPaths()
	addSessionPaths(doc)
	addUserPaths(doc)
	addOptionPaths(doc)
	addIntakePaths(doc)

	return doc
}

// ─── Component Schemas ──────────────────────────────────────────────────────

func addComponentSchemas(doc *openapi3.T) {
	s := doc.Components.Schemas

	s["ErrorResponse"] = objectSchema(openapi3.Schemas{
		"error": objectSchema(openapi3.Schemas{
			"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
			"message": stringProp(""),
			"context": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
		}),
	})

	s["AdminUser"] = objectSchema(openapi3.Schemas{
		"email":         stringProp("email"),
		"name":          stringProp(""),
		"role":          roleProp(),
		"created_at":    stringProp("date-time"),
		"last_login_at": stringProp("date-time"),
	}, "email", "name", "role", "created_at")

	s["LoginRequest"] = objectSchema(openapi3.Schemas{
		"email":    stringProp("email"),
		"password": stringProp("password"),
	}, "email", "password")

	s["LoginResponse"] = objectSchema(openapi3.Schemas{
		"user":       openapi3.NewSchemaRef("#/components/schemas/AdminUser", nil),
		"token":      stringProp(""),
		"token_type": stringProp(""),
		"expires_at": stringProp("date-time"),
		"expires_in": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
	}, "user", "token", "expires_at")

	s["NewAdmin"] = objectSchema(openapi3.Schemas{
		"email":    stringProp("email"),
		"name":     stringProp(""),
		"password": stringProp("password"),
		"role":     roleProp(),
	}, "email", "name", "password")

	s["OptionList"] = objectSchema(openapi3.Schemas{
		"name":  listNameProp(),
		"items": stringArray(),
	}, "name", "items")

	s["OptionItems"] = objectSchema(openapi3.Schemas{
		"items": stringArray(),
	}, "items")

	s["CreativeRequest"] = objectSchema(openapi3.Schemas{
		"email":                    stringProp("email"),
		"taskName":                 stringProp(""),
		"client":                   stringProp(""),
		"creativeType":             stringProp(""),
		"briefing":                 stringProp(""),
		"location":                 stringProp(""),
		"product":                  stringProp(""),
		"commercialTriggers":       stringProp(""),
		"competitiveDifferentials": stringArray(),
		"triggers":                 stringArray(),
		"intention":                stringProp(""),
		"toneOfVoice":              stringProp(""),
		"awarenessLevel":           stringProp(""),
		"cta":                      stringProp(""),
		"startDate":                stringProp("date"),
		"references":               stringProp(""),
	}, "email", "taskName", "client", "creativeType", "briefing", "intention",
		"toneOfVoice", "awarenessLevel", "cta", "startDate")

	s["ChatSession"] = objectSchema(openapi3.Schemas{
		"sessionId": stringProp(""),
	}, "sessionId")

	s["ChatMessage"] = objectSchema(openapi3.Schemas{
		"sessionId": stringProp(""),
		"message":   stringProp(""),
		"userAgent": stringProp(""),
		"url":       stringProp("uri"),
	}, "sessionId", "message")

	s["ChatReply"] = objectSchema(openapi3.Schemas{
		"sessionId": stringProp(""),
		"content":   stringProp(""),
		"source": &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type: &openapi3.Types{"string"},
			Enum: []interface{}{"message", "reply", "response", "text", "string", "raw", "fallback"},
		}},
	}, "sessionId", "content", "source")
}

// ─── Paths ──────────────────────────────────────────────────────────────────

func addSessionPaths(doc *openapi3.T) {
	doc.Paths.Set(APIPrefix+"/admin/session", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"session"},
			Summary:     "Log in",
			Description: "Authenticate an admin and start the session. Five failed attempts lock the client out until restart.",
			OperationID: "login",
			RequestBody: jsonBody("Admin credentials", "LoginRequest"),
			Responses: withStatus(
				newResponses("200", "Logged in", ref("LoginResponse")),
				"429", "Too many failed attempts",
			),
		},
		Get: secured(&openapi3.Operation{
			Tags:        []string{"session"},
			Summary:     "Current admin",
			OperationID: "current_admin",
			Responses:   newResponses("200", "The logged in admin", ref("AdminUser")),
		}),
		Delete: secured(&openapi3.Operation{
			Tags:        []string{"session"},
			Summary:     "Log out",
			OperationID: "logout",
			Responses:   newResponses("200", "Logged out", successSchema()),
		}),
	})
}

func addUserPaths(doc *openapi3.T) {
	doc.Paths.Set(APIPrefix+"/admin/users", &openapi3.PathItem{
		Get: secured(&openapi3.Operation{
			Tags:        []string{"admins"},
			Summary:     "List admins",
			OperationID: "list_admins",
			Responses:   newResponses("200", "Admin accounts", listOf(ref("AdminUser"))),
		}),
		Post: secured(&openapi3.Operation{
			Tags:        []string{"admins"},
			Summary:     "Create admin",
			Description: "Super-admin only. Passwords need at least six characters.",
			OperationID: "create_admin",
			RequestBody: jsonBody("New admin account", "NewAdmin"),
			Responses: withStatus(withStatus(
				newResponses("201", "Created admin", ref("AdminUser")),
				"403", "Super-admin access required"),
				"409", "Email already exists"),
		}),
	})

	emailParam := openapi3.NewPathParameter("email").
		WithDescription("Admin email, matched exactly.").
		WithSchema(openapi3.NewStringSchema())

	doc.Paths.Set(APIPrefix+"/admin/users/{email}", &openapi3.PathItem{
		Delete: secured(&openapi3.Operation{
			Tags:        []string{"admins"},
			Summary:     "Remove admin",
			Description: "Super-admin only. The bootstrap super-admin cannot be removed.",
			OperationID: "remove_admin",
			Parameters:  openapi3.Parameters{&openapi3.ParameterRef{Value: emailParam}},
			Responses: withStatus(
				newResponses("200", "Removed", successSchema()),
				"403", "Protected account or super-admin access required"),
		}),
	})
}

func addOptionPaths(doc *openapi3.T) {
	doc.Paths.Set(APIPrefix+"/options", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"options"},
			Summary:     "All option lists",
			OperationID: "list_options",
			Responses:   newResponses("200", "Every option list", listOf(ref("OptionList"))),
		},
	})

	listParam := openapi3.NewPathParameter("list").
		WithDescription("Option list name.").
		WithSchema(listNameProp().Value)

	doc.Paths.Set(APIPrefix+"/options/{list}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{&openapi3.ParameterRef{Value: listParam}},
		Get: &openapi3.Operation{
			Tags:        []string{"options"},
			Summary:     "One option list",
			OperationID: "get_option_list",
			Responses:   newResponses("200", "The option list", ref("OptionList")),
		},
		Put: secured(&openapi3.Operation{
			Tags:        []string{"options"},
			Summary:     "Replace option list",
			Description: "Items are trimmed. Empty items and duplicates are rejected.",
			OperationID: "replace_option_list",
			RequestBody: jsonBody("New items", "OptionItems"),
			Responses: withStatus(
				newResponses("200", "Updated option list", ref("OptionList")),
				"409", "Duplicate item"),
		}),
		Delete: secured(&openapi3.Operation{
			Tags:        []string{"options"},
			Summary:     "Reset option list",
			Description: "Restore the list to its default items.",
			OperationID: "reset_option_list",
			Responses:   newResponses("200", "Reset option list", ref("OptionList")),
		}),
	})
}

func addIntakePaths(doc *openapi3.T) {
	doc.Paths.Set(APIPrefix+"/requests", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"intake"},
			Summary:     "Submit creative request",
			Description: "Validate the intake form and forward it to the request webhook.",
			OperationID: "submit_request",
			RequestBody: jsonBody("Creative request", "CreativeRequest"),
			Responses: withStatus(
				newResponses("202", "Forwarded", successSchema()),
				"502", "Webhook failed"),
		},
	})

	doc.Paths.Set(APIPrefix+"/chat/sessions", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"chat"},
			Summary:     "Start chat session",
			OperationID: "start_chat",
			Responses:   newResponses("201", "Chat session", ref("ChatSession")),
		},
	})

	doc.Paths.Set(APIPrefix+"/chat/messages", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"chat"},
			Summary:     "Send chat message",
			OperationID: "send_chat",
			RequestBody: jsonBody("Chat message", "ChatMessage"),
			Responses: withStatus(
				newResponses("200", "Bot reply", ref("ChatReply")),
				"502", "Webhook failed"),
		},
	})
}

// ─── Schema Helpers ─────────────────────────────────────────────────────────

func objectSchema(props openapi3.Schemas, required ...string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
			Required:   required,
		},
	}
}

func stringProp(format string) *openapi3.SchemaRef {
	s := openapi3.NewStringSchema()
	s.Format = format
	return &openapi3.SchemaRef{Value: s}
}

func stringArray() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
		},
	}
}

func roleProp() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type: &openapi3.Types{"string"},
		Enum: []interface{}{"admin", "super-admin"},
	}}
}

func listNameProp() *openapi3.SchemaRef {
	names := options.Names()
	enum := make([]interface{}, len(names))
	for i, n := range names {
		enum[i] = n
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type: &openapi3.Types{"string"},
		Enum: enum,
	}}
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef(fmt.Sprintf("#/components/schemas/%s", name), nil)
}

// listOf wraps items in the {"resource": [...], "meta": {"count": n}} envelope.
func listOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	return objectSchema(openapi3.Schemas{
		"resource": &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: items,
			},
		},
		"meta": objectSchema(openapi3.Schemas{
			"count": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
		}),
	})
}

func successSchema() *openapi3.SchemaRef {
	return objectSchema(openapi3.Schemas{
		"success": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
	})
}

func jsonBody(description, schemaName string) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     openapi3.NewContentWithJSONSchemaRef(ref(schemaName)),
		},
	}
}

// secured marks op as requiring the admin bearer token.
func secured(op *openapi3.Operation) *openapi3.Operation {
	op.Security = &openapi3.SecurityRequirements{{"bearerAuth": {}}}
	return op
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// newResponses builds a Responses map with a success response and standard error responses.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	withStatus(responses, "400", "Bad request")
	withStatus(responses, "401", "Unauthorized")
	withStatus(responses, "404", "Not found")
	withStatus(responses, "500", "Internal server error")
	return responses
}

// withStatus adds an error response using the shared error envelope.
func withStatus(responses *openapi3.Responses, statusCode, description string) *openapi3.Responses {
	desc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &desc,
			Content:     openapi3.NewContentWithJSONSchemaRef(ref("ErrorResponse")),
		},
	})
	return responses
}
