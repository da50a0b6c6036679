package api

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/folio/internal/profile"
)

// --- helpers ---

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	return MCPDeps{Service: newTestService(t), Version: "test"}
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "no content in result")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func callTool(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := h(context.Background(), makeCallToolRequest(name, args))
	require.NoError(t, err, name)
	return result
}

func requireToolOK(t *testing.T, result *mcp.CallToolResult) {
	t.Helper()
	require.False(t, result.IsError, "unexpected tool error: %s", toolText(t, result))
}

func mustAddProject(t *testing.T, deps MCPDeps, args map[string]interface{}) []profile.ProjectEntry {
	t.Helper()
	result := callTool(t, mcpAddProject(deps), "add_project", args)
	requireToolOK(t, result)
	var projects []profile.ProjectEntry
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &projects))
	return projects
}

// --- tests ---

func TestMCPTool_AddProject(t *testing.T) {
	deps := newTestMCPDeps(t)

	projects := mustAddProject(t, deps, map[string]interface{}{
		"title":       "Gateway",
		"description": "Routes traffic",
		"skills":      []interface{}{"Go", "gRPC"},
		"links":       `[{"label":"repo","url":"https://github.com/owner/gw"},{"label":"","url":"https://x.dev"}]`,
	})
	require.Len(t, projects, 1)
	p := projects[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, []string{"Go", "gRPC"}, p.Skills)
	require.Len(t, p.Links, 1)
	assert.Equal(t, "repo", p.Links[0].Label)
}

func TestMCPTool_AddProject_MissingTitle(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpAddProject(deps), "add_project", map[string]interface{}{
		"description": "no title",
	})
	assert.True(t, result.IsError)
	assert.Equal(t, "title is required", toolText(t, result))
}

func TestMCPTool_AddProject_BadLinksJSON(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpAddProject(deps), "add_project", map[string]interface{}{
		"title":       "T",
		"description": "D",
		"links":       "{not json",
	})
	assert.True(t, result.IsError)
}

func TestMCPTool_SearchProjects(t *testing.T) {
	deps := newTestMCPDeps(t)
	mustAddProject(t, deps, map[string]interface{}{"title": "Cache", "description": "LRU", "skills": []interface{}{"go"}})
	mustAddProject(t, deps, map[string]interface{}{"title": "Parser", "description": "tokens", "skills": []interface{}{"rust"}})

	result := callTool(t, mcpSearchProjects(deps), "search_projects", map[string]interface{}{
		"skills": []interface{}{"RUST"},
		"limit":  10,
	})
	requireToolOK(t, result)

	var res profile.SearchResult
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	require.Len(t, res.Projects, 1)
	assert.Equal(t, "Parser", res.Projects[0].Title)
	assert.Equal(t, 10, res.Pagination.PageSize)
	assert.Equal(t, 1, res.Pagination.TotalProjects)
}

func TestMCPTool_UpdateAndDeleteProject(t *testing.T) {
	deps := newTestMCPDeps(t)
	projects := mustAddProject(t, deps, map[string]interface{}{"title": "Old", "description": "d"})
	id := projects[0].ID

	result := callTool(t, mcpUpdateProject(deps), "update_project", map[string]interface{}{
		"project_id":  id,
		"title":       "New",
		"description": "d2",
	})
	requireToolOK(t, result)

	result = callTool(t, mcpUpdateProject(deps), "update_project", map[string]interface{}{
		"project_id":  "missing",
		"title":       "X",
		"description": "Y",
	})
	assert.True(t, result.IsError, "expected error for unknown project")

	result = callTool(t, mcpDeleteProject(deps), "delete_project", map[string]interface{}{"project_id": id})
	requireToolOK(t, result)
	assert.Equal(t, "[]", toolText(t, result))
}

func TestMCPTool_AddWork(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpAddWork(deps), "add_work", map[string]interface{}{
		"title":       "Engineer",
		"description": "Backend",
	})
	requireToolOK(t, result)

	var work []profile.WorkEntry
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &work))
	require.Len(t, work, 1)
	assert.Equal(t, "Engineer", work[0].Title)
}

func TestMCPTool_UpdateProfile(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpUpdateProfile(deps), "update_profile", map[string]interface{}{
		"skills": []interface{}{"Go", " Rust "},
	})
	requireToolOK(t, result)

	p, err := deps.Service.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, p.Skills)
	assert.Empty(t, p.Education, "education should be untouched")

	result = callTool(t, mcpUpdateProfile(deps), "update_profile", map[string]interface{}{})
	assert.True(t, result.IsError, "expected error for empty update")
}

func TestMCPTool_UpdateProfile_Education(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpUpdateProfile(deps), "update_profile", map[string]interface{}{
		"education": "  MIT  ",
	})
	requireToolOK(t, result)

	p, err := deps.Service.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MIT", p.Education)

	result = callTool(t, mcpUpdateProfile(deps), "update_profile", map[string]interface{}{
		"education": strings.Repeat("x", maxEducationLen+1),
	})
	assert.True(t, result.IsError, "expected error for over-long education")
}

func TestMCPTool_ReplaceLinks(t *testing.T) {
	deps := newTestMCPDeps(t)

	result := callTool(t, mcpReplaceLinks(deps), "replace_links", map[string]interface{}{
		"links": `{"github":"https://github.com/owner"}`,
	})
	requireToolOK(t, result)

	result = callTool(t, mcpReplaceLinks(deps), "replace_links", map[string]interface{}{
		"links": `{"github":"javascript:alert(1)"}`,
	})
	assert.True(t, result.IsError)
	assert.Equal(t, "invalid URL", toolText(t, result))

	p, err := deps.Service.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/owner", p.Links["github"], "links changed by rejected call")
}

func TestMCPResource_Profile(t *testing.T) {
	deps := newTestMCPDeps(t)

	contents, err := mcpResourceProfile(deps)(context.Background(), makeReadResourceRequest("profile://me"))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected TextResourceContents, got %T", contents[0])

	var p profile.Profile
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &p))
	assert.Equal(t, "Owner", p.Name)
}

func TestMCPResource_Summary(t *testing.T) {
	deps := newTestMCPDeps(t)

	contents, err := mcpResourceSummary(deps)(context.Background(), makeReadResourceRequest("profile://summary"))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected TextResourceContents, got %T", contents[0])
	assert.Equal(t, "Owner. Skills: go.", tc.Text)
	assert.Equal(t, "text/plain", tc.MIMEType)
}

func TestNewMCPServer_Registers(t *testing.T) {
	assert.NotNil(t, NewMCPServer(newTestMCPDeps(t)))
}
