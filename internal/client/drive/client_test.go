package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mwd-agent/internal/model"
)

func TestUnconfiguredClientMakesNoRequests(t *testing.T) {
	c := NewClient(Config{})
	res := c.CreateFolder(context.Background(), "Acme", "")
	assert.False(t, res.Success)
	assert.Equal(t, model.ErrNotConfigured.Error(), res.Error)
}

func TestCreateFolderUsesRootFolderAsDefaultParent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"id": "f1", "name": "Acme"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "tok", RootFolder: "root-1", BaseURL: srv.URL})
	res := c.CreateFolder(context.Background(), "Acme", "")

	require.True(t, res.Success)
	assert.Equal(t, "f1", res.ID)
	assert.Equal(t, "https://drive.google.com/drive/folders/f1", res.URL)
	assert.Equal(t, []any{"root-1"}, got["parents"])
	assert.Equal(t, "application/vnd.google-apps.folder", got["mimeType"])
}

func TestCreateProjectStructure(t *testing.T) {
	var names []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		name, _ := payload["name"].(string)
		names = append(names, name)
		fmt.Fprintf(w, `{"id": "id-%d", "name": %q}`, len(names), name)
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "tok", BaseURL: srv.URL})
	res := c.CreateProjectStructure(context.Background(), "Acme Rebrand", "")

	require.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "Acme Rebrand", res.Name)
	require.Len(t, res.Folders, 5)
	assert.Equal(t, "01 - Branding", res.Folders[0].Name)
	assert.Equal(t, "05 - Assets", res.Folders[4].Name)
	assert.Equal(t, append([]string{"Acme Rebrand"}, projectSubfolders...), names)
}

func TestCreateProjectStructureReportsPartialFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls > 3 {
			http.Error(w, `{"error": "quota exceeded"}`, http.StatusForbidden)
			return
		}
		fmt.Fprintf(w, `{"id": "id-%d", "name": "n"}`, calls)
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "tok", BaseURL: srv.URL})
	res := c.CreateProjectStructure(context.Background(), "Acme Rebrand", "")

	// Root folder and two subfolders made it; the error is reported alongside.
	assert.True(t, res.Success)
	assert.Contains(t, res.Error, "quota exceeded")
	assert.Len(t, res.Folders, 2)
}

func TestCreateDocumentURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id": "doc-1", "name": "Brief"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BotToken: "tok", BaseURL: srv.URL})
	res := c.CreateDocument(context.Background(), "Brief", "folder-1")
	require.True(t, res.Success)
	assert.Equal(t, "https://docs.google.com/document/d/doc-1", res.URL)
}
