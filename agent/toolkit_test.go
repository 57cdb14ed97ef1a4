package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		expr    string
		want    string
		wantErr bool
	}{
		{"1 + 2 * 3", "7", false},
		{"(2 + 3) * 4", "20", false},
		{"10 / 4", "2.5", false},
		{"-3 + 1", "-2", false},
		{"7 % 3", "1", false},
		{"sqrt(16)", "4", false},
		{"pow(2, 10)", "1024", false},
		{"1 / 0", "", true},
		{"sqrt(-1)", "", true},
		{"os.Exit(1)", "", true},
		{"\"hi\"", "", true},
		{"2 +", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Calculate(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalSkipsUnavailableTools(t *testing.T) {
	k := NewToolkit(nil, t.TempDir())
	tools := k.Optional([]string{ToolCalculator, ToolPandas, ToolShell, "Teleporter", ToolExa, ToolFile})

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"calculate", "read_file", "save_file", "list_files"}, names)
}

func TestFileToolsStayInWorkspace(t *testing.T) {
	k := NewToolkit(nil, t.TempDir())
	r := NewRegistry(k.Optional([]string{ToolFile})...)

	assert.Equal(t, "notes.txt", call(t, r, "save_file", map[string]string{"contents": "hello", "file_name": "notes.txt"}))
	assert.Equal(t, "hello", call(t, r, "read_file", map[string]string{"file_name": "notes.txt"}))
	assert.Equal(t, `["notes.txt"]`, call(t, r, "list_files", nil))

	assert.Equal(t, "File notes.txt already exists",
		call(t, r, "save_file", map[string]interface{}{"contents": "x", "file_name": "notes.txt", "overwrite": false}))

	for _, name := range []string{"../escape.txt", "/etc/passwd", "a/../../b", ""} {
		assert.Contains(t, call(t, r, "read_file", map[string]string{"file_name": name}), "Error reading file")
		assert.Contains(t, call(t, r, "save_file", map[string]string{"contents": "x", "file_name": name}), "Error saving file")
	}
}

func TestWikipedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page/summary/Alan_Turing":
			_, _ = w.Write([]byte(`{"title":"Alan Turing","extract":"English mathematician."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	k := NewToolkit(nil, "")
	k.WikipediaURL = srv.URL
	r := NewRegistry(k.Optional([]string{ToolWikipedia})...)

	assert.Equal(t, "Alan Turing: English mathematician.", call(t, r, "search_wikipedia", map[string]string{"query": "Alan Turing"}))
	assert.Equal(t, `No Wikipedia page found for "Nothing Here".`, call(t, r, "search_wikipedia", map[string]string{"query": "Nothing Here"}))
}

func TestSearchTools(t *testing.T) {
	var gotN int
	searcher := ai.NewSearcherWithFunc(func(_ context.Context, q string, n int) ([]ai.SearchResult, error) {
		gotN = n
		return []ai.SearchResult{{Title: q, Snippet: "snippet", Link: "https://example.com"}}, nil
	}, 5)
	k := NewToolkit(searcher, "")

	out := k.Search().Handler(context.Background(), json.RawMessage(`{"query":"base chain"}`))
	assert.Equal(t, "1. base chain\n   snippet\n   https://example.com", out)
	assert.Equal(t, 5, gotN)

	r := NewRegistry(k.Optional([]string{ToolGoogleSearch})...)
	call(t, r, "google_search", map[string]interface{}{"query": "x", "max_results": 2})
	assert.Equal(t, 2, gotN)

	disabled := NewToolkit(ai.NewSearcher(config.SearchConfig{}), "")
	assert.Contains(t, disabled.Search().Handler(context.Background(), json.RawMessage(`{"query":"x"}`)), "Error searching the web")
}

func TestSleepHonoursContext(t *testing.T) {
	k := NewToolkit(nil, "")
	r := NewRegistry(k.Optional([]string{ToolSleep})...)
	tool, _ := r.Get("sleep")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Contains(t, tool.Handler(ctx, json.RawMessage(`{"seconds":30}`)), "Sleep interrupted")
	assert.Equal(t, "Slept for 0s", tool.Handler(context.Background(), json.RawMessage(`{"seconds":0}`)))
}
