package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/folio/internal/profile"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Service *profile.Service
	Version string
}

// NewMCPServer creates an MCP server exposing the portfolio profile as tools
// and resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("folio: the owner's portfolio profile. Search and edit projects, work history and links."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("search_projects",
			mcp.WithDescription("Search portfolio projects by text and skills. Returns one page of results with pagination metadata."),
			mcp.WithString("query", mcp.Description("Case-insensitive substring of title or description")),
			mcp.WithArray("skills", mcp.Description("Match projects having any of these skills"), mcp.WithStringItems()),
			mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
			mcp.WithNumber("limit", mcp.Description("Page size (default 4)")),
		),
		mcpSearchProjects(deps),
	)

	s.AddTool(
		mcp.NewTool("add_project",
			mcp.WithDescription("Add a project to the portfolio."),
			mcp.WithString("title", mcp.Description("Project title"), mcp.Required()),
			mcp.WithString("description", mcp.Description("Project description"), mcp.Required()),
			mcp.WithArray("skills", mcp.Description("Skills used"), mcp.WithStringItems()),
			mcp.WithString("links", mcp.Description(`Optional JSON array of {"label","url"} objects`)),
		),
		mcpAddProject(deps),
	)

	s.AddTool(
		mcp.NewTool("update_project",
			mcp.WithDescription("Replace every field of an existing project."),
			mcp.WithString("project_id", mcp.Description("Id of the project to update"), mcp.Required()),
			mcp.WithString("title", mcp.Description("Project title"), mcp.Required()),
			mcp.WithString("description", mcp.Description("Project description"), mcp.Required()),
			mcp.WithArray("skills", mcp.Description("Skills used"), mcp.WithStringItems()),
			mcp.WithString("links", mcp.Description(`Optional JSON array of {"label","url"} objects`)),
		),
		mcpUpdateProject(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_project",
			mcp.WithDescription("Delete a project by id. Unknown ids are ignored."),
			mcp.WithString("project_id", mcp.Description("Id of the project to delete"), mcp.Required()),
		),
		mcpDeleteProject(deps),
	)

	s.AddTool(
		mcp.NewTool("add_work",
			mcp.WithDescription("Append an entry to the work history."),
			mcp.WithString("title", mcp.Description("Role or position"), mcp.Required()),
			mcp.WithString("description", mcp.Description("What the work involved"), mcp.Required()),
		),
		mcpAddWork(deps),
	)

	s.AddTool(
		mcp.NewTool("update_profile",
			mcp.WithDescription("Update education and/or the skill list. Omitted fields are left unchanged."),
			mcp.WithString("education", mcp.Description("Education summary")),
			mcp.WithArray("skills", mcp.Description("Full replacement skill list"), mcp.WithStringItems()),
		),
		mcpUpdateProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("replace_links",
			mcp.WithDescription("Replace the profile's site links. Every non-empty value must be an http(s) URL."),
			mcp.WithString("links", mcp.Description(`JSON object mapping site name to URL, e.g. {"github":"https://github.com/me"}`), mcp.Required()),
		),
		mcpReplaceLinks(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"profile://me",
			"Portfolio Profile",
			mcp.WithResourceDescription("The full portfolio profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"profile://summary",
			"Profile Summary",
			mcp.WithResourceDescription("A short plain-text summary of the profile"),
			mcp.WithMIMEType("text/plain"),
		),
		mcpResourceSummary(deps),
	)

	return s
}

func mcpSearchProjects(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", profile.DefaultLimit)
		if limit > maxSearchLimit {
			limit = maxSearchLimit
		}
		res, err := deps.Service.SearchProjects(ctx, profile.SearchParams{
			Query:  req.GetString("query", ""),
			Skills: req.GetStringSlice("skills", nil),
			Page:   req.GetInt("page", profile.DefaultPage),
			Limit:  limit,
		})
		if err != nil {
			return mcpServiceError("search failed", err), nil
		}
		return mcpJSON(res), nil
	}
}

func mcpAddProject(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, errResult := projectInputFromMCP(req)
		if errResult != nil {
			return errResult, nil
		}
		projects, err := deps.Service.AddProject(ctx, in)
		if err != nil {
			return mcpServiceError("failed to add project", err), nil
		}
		return mcpJSON(projects), nil
	}
}

func mcpUpdateProject(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("project_id")
		if err != nil {
			return mcpError("project_id is required"), nil
		}
		in, errResult := projectInputFromMCP(req)
		if errResult != nil {
			return errResult, nil
		}
		projects, err := deps.Service.UpdateProject(ctx, id, in)
		if err != nil {
			return mcpServiceError("failed to update project", err), nil
		}
		return mcpJSON(projects), nil
	}
}

func projectInputFromMCP(req mcp.CallToolRequest) (profile.ProjectInput, *mcp.CallToolResult) {
	title, err := req.RequireString("title")
	if err != nil {
		return profile.ProjectInput{}, mcpError("title is required")
	}
	description, err := req.RequireString("description")
	if err != nil {
		return profile.ProjectInput{}, mcpError("description is required")
	}
	in := profile.ProjectInput{
		Title:       title,
		Description: description,
		Skills:      req.GetStringSlice("skills", nil),
	}
	if raw := req.GetString("links", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Links); err != nil {
			return profile.ProjectInput{}, mcpError(fmt.Sprintf("invalid links JSON: %v", err))
		}
	}
	return in, nil
}

func mcpDeleteProject(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("project_id")
		if err != nil {
			return mcpError("project_id is required"), nil
		}
		projects, err := deps.Service.DeleteProject(ctx, id)
		if err != nil {
			return mcpServiceError("failed to delete project", err), nil
		}
		return mcpJSON(projects), nil
	}
}

func mcpAddWork(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		description, err := req.RequireString("description")
		if err != nil {
			return mcpError("description is required"), nil
		}
		work, err := deps.Service.AddWork(ctx, profile.WorkInput{Title: title, Description: description})
		if err != nil {
			return mcpServiceError("failed to add work", err), nil
		}
		return mcpJSON(work), nil
	}
}

func mcpUpdateProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		var u profile.ProfileUpdate
		if _, ok := args["education"]; ok {
			education := strings.TrimSpace(req.GetString("education", ""))
			if utf8.RuneCountInString(education) > maxEducationLen {
				return mcpError(fmt.Sprintf("education must be at most %d characters", maxEducationLen)), nil
			}
			u.Education = &education
		}
		if _, ok := args["skills"]; ok {
			skills := req.GetStringSlice("skills", []string{})
			u.Skills = &skills
		}
		if u.Education == nil && u.Skills == nil {
			return mcpError("nothing to update: pass education and/or skills"), nil
		}

		p, err := deps.Service.UpdateProfile(ctx, u)
		if err != nil {
			return mcpServiceError("failed to update profile", err), nil
		}
		return mcpJSON(p), nil
	}
}

func mcpReplaceLinks(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("links")
		if err != nil {
			return mcpError("links is required"), nil
		}
		var links profile.Links
		if err := json.Unmarshal([]byte(raw), &links); err != nil {
			return mcpError(fmt.Sprintf("invalid links JSON: %v", err)), nil
		}
		out, err := deps.Service.ReplaceLinks(ctx, links)
		if err != nil {
			return mcpServiceError("failed to replace links", err), nil
		}
		return mcpJSON(out), nil
	}
}

func mcpResourceProfile(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		p, err := deps.Service.GetProfile(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}

		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal profile: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpResourceSummary(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		summary, err := deps.Service.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "text/plain",
				Text:     summary,
			},
		}, nil
	}
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

// mcpServiceError reports validation and not-found errors verbatim; other
// failures are prefixed with what was being attempted.
func mcpServiceError(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, profile.ErrInvalid) || errors.Is(err, profile.ErrNotFound) {
		return mcpError(err.Error())
	}
	return mcpError(fmt.Sprintf("%s: %v", action, err))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
