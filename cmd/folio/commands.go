package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/profile"
)

const apiBase = "/api/user"

// splitList splits a comma-separated flag value, trimming entries and
// dropping empty ones.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parsePairs turns "key=value" arguments into a map.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected name=value, got %q", a)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func parseProjectLinks(args []string) ([]profile.ProjectLink, error) {
	pairs := make([]profile.ProjectLink, 0, len(args))
	for _, a := range args {
		label, u, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected label=url, got %q", a)
		}
		pairs = append(pairs, profile.ProjectLink{Label: strings.TrimSpace(label), URL: strings.TrimSpace(u)})
	}
	return pairs, nil
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, _ := cmd.Flags().GetBool("summary")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), apiBase+"/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		if summary {
			fmt.Fprintln(cmd.OutOrStdout(), profile.Summarize(p))
			return nil
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update education and/or skills",
	Long: `Update education and/or skills. Omitted flags leave the field unchanged.

Examples:
  folio profile set --education "BSc Computer Science"
  folio profile set --skills go,rust,postgres`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var u profile.ProfileUpdate
		if cmd.Flags().Changed("education") {
			education, _ := cmd.Flags().GetString("education")
			u.Education = &education
		}
		if cmd.Flags().Changed("skills") {
			raw, _ := cmd.Flags().GetString("skills")
			skills := splitList(raw)
			if skills == nil {
				skills = []string{}
			}
			u.Skills = &skills
		}
		if u.Education == nil && u.Skills == nil {
			return fmt.Errorf("one of --education or --skills is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), apiBase+"/profile", u)
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		printSuccess("Profile updated")
		return nil
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit education and skills in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), apiBase+"/profile")
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		data, err := json.MarshalIndent(profile.ProfileUpdate{Education: &p.Education, Skills: &p.Skills}, "", "  ")
		if err != nil {
			return err
		}

		tmpFile, err := os.CreateTemp("", "folio-profile-*.json")
		if err != nil {
			return fmt.Errorf("creating temp file: %w", err)
		}
		tmpPath := tmpFile.Name()
		defer os.Remove(tmpPath)

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			return err
		}
		tmpFile.Close()

		editorCmd := exec.Command(editor, tmpPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr
		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("editor exited with error: %w", err)
		}

		edited, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		var u profile.ProfileUpdate
		if err := json.Unmarshal(edited, &u); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		putResp, err := client.put(cmd.Context(), apiBase+"/profile", u)
		if err != nil {
			return err
		}
		if err := decodeJSON(putResp, nil); err != nil {
			return err
		}

		printSuccess("Profile updated")
		return nil
	},
}

func init() {
	profileShowCmd.Flags().Bool("summary", false, "print a one-paragraph text summary instead of JSON")
	profileSetCmd.Flags().String("education", "", "education summary")
	profileSetCmd.Flags().String("skills", "", "comma-separated skills (replaces the list)")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileEditCmd)
}

// --- work ---

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Manage work history",
}

var workAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a work entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
			return fmt.Errorf("--title and --description are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), apiBase+"/work", profile.WorkInput{Title: title, Description: description})
		if err != nil {
			return err
		}

		var result struct {
			Work []profile.WorkEntry `json:"work"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Added work entry (%d total)", len(result.Work))
		return nil
	},
}

func init() {
	workAddCmd.Flags().String("title", "", "role or position")
	workAddCmd.Flags().String("description", "", "what the work involved")
	workCmd.AddCommand(workAddCmd)
}

// --- links ---

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Manage profile site links",
}

var linksSetCmd = &cobra.Command{
	Use:   "set <name=url>...",
	Short: "Replace all site links",
	Long: `Replace all site links. Links not named are removed; an empty URL clears one.

Example:
  folio links set github=https://github.com/me linkedin=https://linkedin.com/in/me website=`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := parsePairs(args)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), apiBase+"/links", map[string]any{"links": links})
		if err != nil {
			return err
		}

		var result struct {
			Links profile.Links `json:"links"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Links replaced (%d)", len(result.Links))
		return nil
	},
}

func init() {
	linksCmd.AddCommand(linksSetCmd)
}

// --- project ---

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage portfolio projects",
}

type projectBody struct {
	ProjectID   string                `json:"projectId,omitempty"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Skills      []string              `json:"skills"`
	Links       []profile.ProjectLink `json:"links,omitempty"`
}

func projectBodyFromFlags(cmd *cobra.Command) (projectBody, error) {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	skillsRaw, _ := cmd.Flags().GetString("skills")
	linkArgs, _ := cmd.Flags().GetStringArray("link")

	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return projectBody{}, fmt.Errorf("--title and --description are required")
	}
	links, err := parseProjectLinks(linkArgs)
	if err != nil {
		return projectBody{}, err
	}
	skills := splitList(skillsRaw)
	if skills == nil {
		skills = []string{}
	}
	return projectBody{Title: title, Description: description, Skills: skills, Links: links}, nil
}

func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "project title")
	cmd.Flags().String("description", "", "project description")
	cmd.Flags().String("skills", "", "comma-separated skills")
	cmd.Flags().StringArray("link", nil, "project link as label=url (repeatable)")
}

func printProjectsResult(resp projectsResponse, verb string) {
	printSuccess("Project %s (%d total)", verb, len(resp.Projects))
}

type projectsResponse struct {
	Projects []profile.ProjectEntry `json:"projects"`
}

var projectAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := projectBodyFromFlags(cmd)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), apiBase+"/project/add", body)
		if err != nil {
			return err
		}

		var result projectsResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printProjectsResult(result, "added")
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace every field of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := projectBodyFromFlags(cmd)
		if err != nil {
			return err
		}
		body.ProjectID = args[0]

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), apiBase+"/project/update", body)
		if err != nil {
			return err
		}

		var result projectsResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printProjectsResult(result, "updated")
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), apiBase+"/project/delete", map[string]string{"projectId": args[0]})
		if err != nil {
			return err
		}

		var result projectsResponse
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printProjectsResult(result, "deleted")
		return nil
	},
}

var projectSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search projects by text and skills",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skills, _ := cmd.Flags().GetString("skills")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		q := url.Values{}
		if len(args) == 1 {
			q.Set("searchQuery", args[0])
		}
		if skills != "" {
			q.Set("skills", skills)
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(limit))

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), apiBase+"/project/search?"+q.Encode())
		if err != nil {
			return err
		}

		var res profile.SearchResult
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(res.Projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}
		for _, p := range res.Projects {
			fmt.Fprintf(out, "%s  %s\n", colorize(colorCyan, shortID(p.ID)), colorize(colorBold, p.Title))
			if len(p.Skills) > 0 {
				fmt.Fprintf(out, "  Skills: %s\n", strings.Join(p.Skills, ", "))
			}
			fmt.Fprintf(out, "  %s\n", truncate(p.Description, 200))
		}
		pg := res.Pagination
		fmt.Fprintf(out, "\nPage %d of %d (%d projects)\n", pg.CurrentPage, pg.TotalPages, pg.TotalProjects)
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	addProjectFlags(projectAddCmd)
	addProjectFlags(projectUpdateCmd)
	projectSearchCmd.Flags().String("skills", "", "comma-separated skills (any match)")
	projectSearchCmd.Flags().Int("page", profile.DefaultPage, "page number")
	projectSearchCmd.Flags().Int("limit", profile.DefaultLimit, "page size")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectSearchCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, colorize(colorCyan, "("+k.EnvVar+")"))
		}
		pw := "not set"
		if cfg.Auth.Password != "" {
			pw = "set"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = <%s>\n", colorize(colorBold, "auth.password"), pw)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value, restoring its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the API password (read from stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := config.SetPassword(pw); err != nil {
			return err
		}
		printSuccess("Password stored")
		return nil
	},
}

func readLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return "", fmt.Errorf("no password on stdin")
	}
	return strings.TrimSpace(sc.Text()), nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configSetPasswordCmd)
}
