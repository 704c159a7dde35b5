package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"mwd-agent/internal/model"
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// Config for the Drive client. Credential issuance is handled outside this
// service; the client takes a pre-issued bearer token.
type Config struct {
	BotToken   string
	RootFolder string
	BaseURL    string // overridable in tests
}

// Client wraps the Google Drive REST API for folder and document creation.
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
	return c.cfg.BotToken != ""
}

// Folder is one created folder.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Result is the uniform envelope for every Drive operation.
type Result struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name,omitempty"`
	URL     string   `json:"url,omitempty"`
	Folders []Folder `json:"folders,omitempty"`
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Subfolders created for every new client project.
var projectSubfolders = []string{
	"01 - Branding",
	"02 - Website",
	"03 - Social Media",
	"04 - Copywriting",
	"05 - Assets",
}

// CreateFolder creates a folder, under parentID or the configured root.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	f, err := c.createFile(ctx, name, "application/vnd.google-apps.folder", c.parentOf(parentID))
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, ID: f.ID, Name: f.Name, URL: folderURL(f.ID)}
}

// CreateProjectStructure creates a project folder with the standard
// subfolder layout for client work.
func (c *Client) CreateProjectStructure(ctx context.Context, projectName, parentID string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	root, err := c.createFile(ctx, projectName, "application/vnd.google-apps.folder", c.parentOf(parentID))
	if err != nil {
		return failure(err)
	}
	res := Result{Success: true, ID: root.ID, Name: root.Name, URL: folderURL(root.ID)}
	for _, sub := range projectSubfolders {
		f, err := c.createFile(ctx, sub, "application/vnd.google-apps.folder", root.ID)
		if err != nil {
			// Partial structure is still usable; report what was created.
			res.Error = err.Error()
			break
		}
		res.Folders = append(res.Folders, Folder{ID: f.ID, Name: f.Name, URL: folderURL(f.ID)})
	}
	return res
}

// CreateDocument creates an empty Google Doc in the given folder.
func (c *Client) CreateDocument(ctx context.Context, title, parentID string) Result {
	if !c.Configured() {
		return failure(model.ErrNotConfigured)
	}
	f, err := c.createFile(ctx, title, "application/vnd.google-apps.document", c.parentOf(parentID))
	if err != nil {
		return failure(err)
	}
	return Result{Success: true, ID: f.ID, Name: f.Name,
		URL: "https://docs.google.com/document/d/" + f.ID}
}

func (c *Client) parentOf(parentID string) string {
	if parentID != "" {
		return parentID
	}
	return c.cfg.RootFolder
}

type fileMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) createFile(ctx context.Context, name, mimeType, parentID string) (*fileMeta, error) {
	payload := map[string]any{
		"name":     name,
		"mimeType": mimeType,
	}
	if parentID != "" {
		payload["parents"] = []string{parentID}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/files", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.BotToken)
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
		return nil, fmt.Errorf("drive api error: %s %s", resp.Status, string(raw))
	}
	var f fileMeta
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &f, nil
}

func folderURL(id string) string {
	return "https://drive.google.com/drive/folders/" + id
}
