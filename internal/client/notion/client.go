package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mwd-agent/internal/model"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Config for the Notion client.
type Config struct {
	APIKey           string
	ProjectsDatabase string
	MeetingsDatabase string
	PortalsPage      string
	BaseURL          string // overridable in tests
}

// Client wraps the Notion REST API for workspace operations: project pages,
// meeting notes, search and client portals.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// ProjectsDatabase is the default database for project pages and queries.
func (c *Client) ProjectsDatabase() string { return c.cfg.ProjectsDatabase }

// MeetingsDatabase is the default database for meeting notes.
func (c *Client) MeetingsDatabase() string { return c.cfg.MeetingsDatabase }

// PortalsPage is the default parent page for client portals.
func (c *Client) PortalsPage() string { return c.cfg.PortalsPage }

// Page is a condensed view of a Notion page or database entry.
type Page struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Result is the uniform envelope for every Notion operation.
type Result struct {
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	PageID   string         `json:"page_id,omitempty"`
	URL      string         `json:"url,omitempty"`
	Pages    []Page         `json:"pages,omitempty"`
	Overview map[string]int `json:"overview,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// CreateProjectPage creates a project entry in the projects database.
func (c *Client) CreateProjectPage(ctx context.Context, databaseID string, project map[string]any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	name, _ := project["name"].(string)
	if name == "" {
		name, _ = project["company_name"].(string)
	}
	if name == "" {
		name = "Untitled Project"
	}
	props := map[string]any{
		"Name": titleProperty(name),
	}
	if status, ok := project["status"].(string); ok && status != "" {
		props["Status"] = selectProperty(status)
	}
	if client, ok := project["client"].(string); ok && client != "" {
		props["Client"] = richTextProperty(client)
	}
	payload := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": props,
	}
	return c.createPage(ctx, payload)
}

// UpdateProjectStatus sets the Status select of a project page and appends
// the notes as a paragraph when provided.
func (c *Client) UpdateProjectStatus(ctx context.Context, pageID, status, notes string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	payload := map[string]any{
		"properties": map[string]any{
			"Status": selectProperty(status),
		},
	}
	raw, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload)
	if err != nil {
		return failure(err)
	}
	res := pageResult(raw)
	if notes != "" {
		_, _ = c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", map[string]any{
			"children": []any{paragraphBlock(notes)},
		})
	}
	return res
}

// QueryDatabase runs a filtered query against a database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter, sorts any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	payload := map[string]any{}
	if filter != nil {
		payload["filter"] = filter
	}
	if sorts != nil {
		payload["sorts"] = sorts
	}
	raw, err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", payload)
	if err != nil {
		return failure(err)
	}
	return listResult(raw)
}

// CreateMeetingNotes creates a meeting-notes page with the summary body.
func (c *Client) CreateMeetingNotes(ctx context.Context, databaseID string, meeting map[string]any) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	title, _ := meeting["title"].(string)
	if title == "" {
		title = "Meeting Notes"
	}
	payload := map[string]any{
		"parent": map[string]string{"database_id": databaseID},
		"properties": map[string]any{
			"Name": titleProperty(title),
		},
	}
	if summary, ok := meeting["summary"].(string); ok && summary != "" {
		payload["children"] = []any{
			headingBlock("Summary"),
			paragraphBlock(summary),
		}
	}
	return c.createPage(ctx, payload)
}

// Search runs a workspace search, optionally restricted to "page" or
// "database" objects.
func (c *Client) Search(ctx context.Context, query, filterType string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	payload := map[string]any{"query": query}
	if filterType != "" {
		payload["filter"] = map[string]string{"property": "object", "value": filterType}
	}
	raw, err := c.do(ctx, http.MethodPost, "/search", payload)
	if err != nil {
		return failure(err)
	}
	return listResult(raw)
}

// WorkspaceOverview counts pages and databases visible to the integration.
func (c *Client) WorkspaceOverview(ctx context.Context) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	raw, err := c.do(ctx, http.MethodPost, "/search", map[string]any{})
	if err != nil {
		return failure(err)
	}
	res := listResult(raw)
	if !res.Success {
		return res
	}
	overview := map[string]int{"pages": 0, "databases": 0}
	for _, p := range res.Pages {
		switch p.Object {
		case "database":
			overview["databases"]++
		default:
			overview["pages"]++
		}
	}
	res.Overview = overview
	return res
}

// CreateClientPortal builds a portal page for a client under the configured
// parent page: overview, requested services and next steps.
func (c *Client) CreateClientPortal(ctx context.Context, parentPageID string, client model.IntakeData) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	company := client.CompanyName
	if company == "" {
		company = "New Client"
	}
	children := []any{
		headingBlock("Welcome, " + company),
		paragraphBlock(fmt.Sprintf("Industry: %s | Contact: %s <%s>",
			orDash(client.Industry), orDash(client.ContactName), orDash(client.ContactEmail))),
		headingBlock("Services"),
	}
	if len(client.KeyServices) == 0 {
		children = append(children, paragraphBlock("To be defined."))
	}
	for _, s := range client.KeyServices {
		children = append(children, bulletBlock(formatServiceName(s)))
	}
	children = append(children,
		headingBlock("Next Steps"),
		bulletBlock("Kickoff call"),
		bulletBlock("Review strategy deliverables"),
		bulletBlock("Approve timeline"),
	)
	payload := map[string]any{
		"parent": map[string]string{"page_id": parentPageID},
		"properties": map[string]any{
			"title": titleProperty(company + " - Client Portal"),
		},
		"children": children,
	}
	return c.createPage(ctx, payload)
}

func (c *Client) createPage(ctx context.Context, payload map[string]any) Result {
	raw, err := c.do(ctx, http.MethodPost, "/pages", payload)
	if err != nil {
		return failure(err)
	}
	return pageResult(raw)
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Notion-Version", apiVersion)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion api error: %s %s", resp.Status, string(raw))
	}
	return raw, nil
}

func pageResult(raw json.RawMessage) Result {
	var page struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return failure(fmt.Errorf("unmarshal page: %w", err))
	}
	return Result{Success: true, PageID: page.ID, URL: page.URL}
}

func listResult(raw json.RawMessage) Result {
	var list struct {
		Results []struct {
			ID         string         `json:"id"`
			Object     string         `json:"object"`
			URL        string         `json:"url"`
			Properties map[string]any `json:"properties"`
			Title      []any          `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return failure(fmt.Errorf("unmarshal results: %w", err))
	}
	res := Result{Success: true}
	for _, r := range list.Results {
		res.Pages = append(res.Pages, Page{
			ID:     r.ID,
			Object: r.Object,
			URL:    r.URL,
			Title:  extractTitle(r.Properties, r.Title),
		})
	}
	return res
}

// extractTitle pulls plain text from whichever title property the object
// carries. Notion buries it differently for pages and databases.
func extractTitle(props map[string]any, dbTitle []any) string {
	if t := plainText(dbTitle); t != "" {
		return t
	}
	for _, v := range props {
		prop, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if prop["type"] == "title" {
			if arr, ok := prop["title"].([]any); ok {
				return plainText(arr)
			}
		}
	}
	return ""
}

func plainText(arr []any) string {
	var b strings.Builder
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			if s, ok := m["plain_text"].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

func titleProperty(text string) map[string]any {
	return map[string]any{
		"title": []any{map[string]any{"text": map[string]string{"content": text}}},
	}
}

func richTextProperty(text string) map[string]any {
	return map[string]any{
		"rich_text": []any{map[string]any{"text": map[string]string{"content": text}}},
	}
}

func selectProperty(name string) map[string]any {
	return map[string]any{"select": map[string]string{"name": name}}
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []any{map[string]any{"text": map[string]string{"content": text}}},
		},
	}
}

func headingBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "heading_2",
		"heading_2": map[string]any{
			"rich_text": []any{map[string]any{"text": map[string]string{"content": text}}},
		},
	}
}

func bulletBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "bulleted_list_item",
		"bulleted_list_item": map[string]any{
			"rich_text": []any{map[string]any{"text": map[string]string{"content": text}}},
		},
	}
}

func formatServiceName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
