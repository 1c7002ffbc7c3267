package repoclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/standardbeagle/perfguard/internal/model"
)

func TestResolveRepositoryPicksBestFuzzyMatchWithPermissions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"name":           "perf-guard-service",
				"owner":          map[string]string{"login": "acme"},
				"default_branch": "main",
				"permissions":    map[string]bool{"pull": true, "push": true},
			},
			{
				"name":           "unrelated-repo",
				"owner":          map[string]string{"login": "acme"},
				"default_branch": "main",
				"permissions":    map[string]bool{"pull": true, "push": true},
			},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := &Client{httpClient: server.Client(), baseURL: server.URL}
	if err := c.resolveRepository(context.Background(), "perfguard-service"); err != nil {
		t.Fatalf("resolveRepository returned error: %v", err)
	}
	if c.repo != "perf-guard-service" {
		t.Errorf("repo = %q, want the closer fuzzy match", c.repo)
	}
	if c.owner != "acme" {
		t.Errorf("owner = %q, want acme", c.owner)
	}
}

func TestResolveRepositoryRejectsWithoutBothPermissions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"name":           "perfguard-service",
				"owner":          map[string]string{"login": "acme"},
				"default_branch": "main",
				"permissions":    map[string]bool{"pull": true, "push": false},
			},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := &Client{httpClient: server.Client(), baseURL: server.URL}
	if err := c.resolveRepository(context.Background(), "perfguard-service"); err == nil {
		t.Fatal("expected a not-found error when push permission is missing")
	}
}

func TestFilesByExtensionWalksDirectoriesBreadthFirst(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/svc/contents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "app.py", "path": "app.py", "type": "file"},
			{"name": "pkg", "path": "pkg", "type": "dir"},
		})
	})
	mux.HandleFunc("/repos/acme/svc/contents/pkg", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "util.py", "path": "pkg/util.py", "type": "file"},
			{"name": "README.md", "path": "pkg/README.md", "type": "file"},
		})
	})
	mux.HandleFunc("/repos/acme/svc/contents/app.py", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"name": "app.py", "path": "app.py", "type": "file",
			"content": base64.StdEncoding.EncodeToString([]byte("def handler(): pass\n")), "encoding": "base64",
		})
	})
	mux.HandleFunc("/repos/acme/svc/contents/pkg/util.py", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"name": "util.py", "path": "pkg/util.py", "type": "file",
			"content": base64.StdEncoding.EncodeToString([]byte("def helper(): pass\n")), "encoding": "base64",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := &Client{httpClient: server.Client(), baseURL: server.URL, owner: "acme", repo: "svc", defaultBranch: "main"}
	files, err := c.FilesByExtension(context.Background(), "py")
	if err != nil {
		t.Fatalf("FilesByExtension returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 .py files (README.md excluded), got %d: %+v", len(files), files)
	}
	for _, f := range files {
		if f.Content == "" {
			t.Errorf("file %s content was not decoded", f.Path)
		}
	}
}

func TestPublishNoOpOnEmptyBody(t *testing.T) {
	c := &Client{httpClient: http.DefaultClient, baseURL: "http://unused.invalid"}
	file := model.NewFile("app.py", "def handler(): pass\n")
	method := &model.Method{Name: "handler", Body: "def handler(): pass", Owner: file}

	if err := c.Publish(context.Background(), method, ""); err != nil {
		t.Fatalf("Publish with empty body should no-op, got error: %v", err)
	}
}

func TestPublishCreatesBranchAndCommits(t *testing.T) {
	var gotRefBody, gotCommitBody map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/svc/git/refs/heads/main", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"object": map[string]string{"sha": "base-sha"}})
	})
	mux.HandleFunc("/repos/acme/svc/git/refs", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRefBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"ref": gotRefBody["ref"].(string)})
	})
	mux.HandleFunc("/repos/acme/svc/contents/app.py", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			json.NewEncoder(w).Encode(map[string]string{"sha": "existing-sha"})
			return
		}
		json.NewDecoder(r.Body).Decode(&gotCommitBody)
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c := &Client{httpClient: server.Client(), baseURL: server.URL, owner: "acme", repo: "svc", defaultBranch: "main"}
	file := model.NewFile("app.py", "def handler():\n    return slow()\n")
	method := &model.Method{Name: "handler", Body: "def handler():\n    return slow()", Owner: file}

	if err := c.Publish(context.Background(), method, "def handler():\n    return fast()"); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if gotRefBody["sha"] != "base-sha" {
		t.Errorf("branch creation should use the default branch's head sha, got %v", gotRefBody["sha"])
	}
	if gotCommitBody["sha"] != "existing-sha" {
		t.Errorf("commit should carry the existing blob sha, got %v", gotCommitBody["sha"])
	}
}
