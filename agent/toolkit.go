package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NethermindEth/aigent-launchpad/ai"
	"github.com/NethermindEth/aigent-launchpad/logger"
	"github.com/NethermindEth/aigent-launchpad/utils"
	"go.uber.org/zap"
)

// Optional toolkit names an agent configuration may list
const (
	ToolCalculator   = "Calculator"
	ToolExa          = "Exa"
	ToolFile         = "File"
	ToolGoogleSearch = "GoogleSearch"
	ToolPandas       = "Pandas"
	ToolShell        = "Shell"
	ToolWikipedia    = "Wikipedia"
	ToolSleep        = "Sleep"
)

// OptionalToolNames is every name a configuration may carry
var OptionalToolNames = []string{
	ToolCalculator, ToolExa, ToolFile, ToolGoogleSearch, ToolPandas, ToolShell, ToolWikipedia, ToolSleep,
}

// ProvidedToolNames are the optional tools this build can equip
var ProvidedToolNames = []string{
	ToolCalculator, ToolExa, ToolFile, ToolGoogleSearch, ToolWikipedia, ToolSleep,
}

const (
	defaultWikipediaURL = "https://en.wikipedia.org/api/rest_v1"
	maxSleep            = 60 * time.Second
	maxFileSize         = 1 << 20
)

// Toolkit builds the fixed search tool and the optional tools
type Toolkit struct {
	Searcher     *ai.Searcher
	Workspace    string
	HTTPClient   *http.Client
	WikipediaURL string
}

func NewToolkit(searcher *ai.Searcher, workspace string) *Toolkit {
	return &Toolkit{
		Searcher:     searcher,
		Workspace:    workspace,
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
		WikipediaURL: defaultWikipediaURL,
	}
}

// Search is the web search tool every chat agent carries
func (k *Toolkit) Search() Tool {
	return Tool{
		Name:        "search",
		Description: "Search the web for real time information. Returns titles, snippets and links.",
		Parameters: ai.Object(map[string]*ai.Schema{
			"query": ai.String("The search query"),
		}, "query"),
		Handler: k.searchHandler(0),
	}
}

// Optional returns the tools for the configured names. Names that are known
// but not provided, and unknown names, are logged and skipped.
func (k *Toolkit) Optional(names []string) []Tool {
	var out []Tool
	for _, name := range names {
		switch name {
		case ToolCalculator:
			out = append(out, k.calculator())
		case ToolExa:
			// the fixed search tool already covers neural web search
			continue
		case ToolFile:
			out = append(out, k.fileTools()...)
		case ToolGoogleSearch:
			out = append(out, k.googleSearch())
		case ToolWikipedia:
			out = append(out, k.wikipedia())
		case ToolSleep:
			out = append(out, k.sleep())
		case ToolPandas, ToolShell:
			logger.L().Info("tool not available in this build", zap.String("tool", name))
		default:
			logger.L().Warn("unknown tool in agent configuration", zap.String("tool", name))
		}
	}
	return out
}

func (k *Toolkit) searchHandler(defaultMax int) Handler {
	return func(ctx context.Context, raw json.RawMessage) string {
		var args struct {
			Query      string `json:"query"`
			MaxResults int    `json:"max_results"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return "Error: " + err.Error()
		}
		n := args.MaxResults
		if n <= 0 {
			n = defaultMax
		}
		results, err := k.Searcher.SearchN(ctx, args.Query, n)
		if err != nil {
			return fmt.Sprintf("Error searching the web: %v", err)
		}
		return ai.FormatResults(results)
	}
}

func (k *Toolkit) googleSearch() Tool {
	return Tool{
		Name:        "google_search",
		Description: "Search Google for a query and return the top results.",
		Parameters: ai.Object(map[string]*ai.Schema{
			"query":       ai.String("The query to search for"),
			"max_results": ai.Integer("Maximum number of results to return"),
		}, "query"),
		Handler: k.searchHandler(5),
	}
}

func (k *Toolkit) calculator() Tool {
	return Tool{
		Name:        "calculate",
		Description: "Evaluate an arithmetic expression. Supports + - * / %, parentheses, sqrt(x) and pow(x, y).",
		Parameters: ai.Object(map[string]*ai.Schema{
			"expression": ai.String("The expression to evaluate, e.g. (2 + 3) * 4"),
		}, "expression"),
		Handler: func(_ context.Context, raw json.RawMessage) string {
			var args struct {
				Expression string `json:"expression"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return "Error: " + err.Error()
			}
			result, err := Calculate(args.Expression)
			if err != nil {
				return fmt.Sprintf("Error: %v", err)
			}
			return result
		},
	}
}

// Calculate evaluates an arithmetic expression exactly where possible
func Calculate(expr string) (string, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return "", fmt.Errorf("invalid expression %q", expr)
	}
	v, err := evalExpr(node)
	if err != nil {
		return "", err
	}
	if v.Kind() == constant.Int {
		return v.ExactString(), nil
	}
	f, _ := constant.Float64Val(v)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", errors.New("result out of range")
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func evalExpr(n ast.Expr) (constant.Value, error) {
	switch e := n.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return nil, fmt.Errorf("unsupported literal %s", e.Value)
		}
		return constant.MakeFromLiteral(e.Value, e.Kind, 0), nil
	case *ast.ParenExpr:
		return evalExpr(e.X)
	case *ast.UnaryExpr:
		x, err := evalExpr(e.X)
		if err != nil {
			return nil, err
		}
		if e.Op != token.ADD && e.Op != token.SUB {
			return nil, fmt.Errorf("unsupported operator %s", e.Op)
		}
		return constant.UnaryOp(e.Op, x, 0), nil
	case *ast.BinaryExpr:
		x, err := evalExpr(e.X)
		if err != nil {
			return nil, err
		}
		y, err := evalExpr(e.Y)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.ADD, token.SUB, token.MUL:
			return constant.BinaryOp(x, e.Op, y), nil
		case token.QUO, token.REM:
			if constant.Sign(y) == 0 {
				return nil, errors.New("division by zero")
			}
			if e.Op == token.REM {
				if x.Kind() != constant.Int || y.Kind() != constant.Int {
					return nil, errors.New("% needs whole numbers")
				}
			}
			return constant.BinaryOp(x, e.Op, y), nil
		default:
			return nil, fmt.Errorf("unsupported operator %s", e.Op)
		}
	case *ast.CallExpr:
		fn, ok := e.Fun.(*ast.Ident)
		if !ok {
			return nil, errors.New("unsupported function call")
		}
		var args []float64
		for _, a := range e.Args {
			v, err := evalExpr(a)
			if err != nil {
				return nil, err
			}
			f, _ := constant.Float64Val(v)
			args = append(args, f)
		}
		switch {
		case fn.Name == "sqrt" && len(args) == 1:
			if args[0] < 0 {
				return nil, errors.New("square root of a negative number")
			}
			return constant.MakeFloat64(math.Sqrt(args[0])), nil
		case fn.Name == "pow" && len(args) == 2:
			return constant.MakeFloat64(math.Pow(args[0], args[1])), nil
		default:
			return nil, fmt.Errorf("unsupported function %s", fn.Name)
		}
	default:
		return nil, errors.New("unsupported expression")
	}
}

func (k *Toolkit) wikipedia() Tool {
	return Tool{
		Name:        "search_wikipedia",
		Description: "Look up a topic on Wikipedia and return the summary of its page.",
		Parameters: ai.Object(map[string]*ai.Schema{
			"query": ai.String("The page title or topic"),
		}, "query"),
		Handler: func(ctx context.Context, raw json.RawMessage) string {
			var args struct {
				Query string `json:"query"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return "Error: " + err.Error()
			}
			summary, err := k.wikipediaSummary(ctx, args.Query)
			if err != nil {
				return fmt.Sprintf("Error searching Wikipedia: %v", err)
			}
			return summary
		},
	}
}

func (k *Toolkit) wikipediaSummary(ctx context.Context, query string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	if title == "" {
		return "", errors.New("empty query")
	}
	endpoint := strings.TrimRight(k.WikipediaURL, "/") + "/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Sprintf("No Wikipedia page found for %q.", query), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	var page struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFileSize)).Decode(&page); err != nil {
		return "", fmt.Errorf("invalid wikipedia response: %w", err)
	}
	return fmt.Sprintf("%s: %s", page.Title, page.Extract), nil
}

func (k *Toolkit) sleep() Tool {
	return Tool{
		Name:        "sleep",
		Description: "Pause for a number of seconds (at most 60).",
		Parameters: ai.Object(map[string]*ai.Schema{
			"seconds": ai.Number("How long to sleep"),
		}, "seconds"),
		Handler: func(ctx context.Context, raw json.RawMessage) string {
			var args struct {
				Seconds float64 `json:"seconds"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return "Error: " + err.Error()
			}
			d := time.Duration(args.Seconds * float64(time.Second))
			if d < 0 {
				d = 0
			}
			if d > maxSleep {
				d = maxSleep
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return fmt.Sprintf("Sleep interrupted: %v", ctx.Err())
			case <-timer.C:
				return fmt.Sprintf("Slept for %s", d)
			}
		},
	}
}

func (k *Toolkit) fileTools() []Tool {
	return []Tool{
		{
			Name:        "read_file",
			Description: "Read the contents of a file in the agent workspace.",
			Parameters:  ai.Object(map[string]*ai.Schema{"file_name": ai.String("Name of the file")}, "file_name"),
			Handler: func(_ context.Context, raw json.RawMessage) string {
				var args struct {
					FileName string `json:"file_name"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return "Error: " + err.Error()
				}
				path, err := k.resolve(args.FileName)
				if err != nil {
					return fmt.Sprintf("Error reading file: %v", err)
				}
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Sprintf("Error reading file: %v", err)
				}
				if info.Size() > maxFileSize {
					return "Error reading file: file too large"
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Sprintf("Error reading file: %v", err)
				}
				return string(data)
			},
		},
		{
			Name:        "save_file",
			Description: "Save contents to a file in the agent workspace.",
			Parameters: ai.Object(map[string]*ai.Schema{
				"contents":  ai.String("Contents to write"),
				"file_name": ai.String("Name of the file"),
				"overwrite": {Type: "boolean", Description: "Overwrite the file if it exists (default true)"},
			}, "contents", "file_name"),
			Handler: func(_ context.Context, raw json.RawMessage) string {
				var args struct {
					Contents  string `json:"contents"`
					FileName  string `json:"file_name"`
					Overwrite *bool  `json:"overwrite"`
				}
				if err := decodeArgs(raw, &args); err != nil {
					return "Error: " + err.Error()
				}
				path, err := k.resolve(args.FileName)
				if err != nil {
					return fmt.Sprintf("Error saving file: %v", err)
				}
				if args.Overwrite != nil && !*args.Overwrite && utils.FileExists(path) {
					return fmt.Sprintf("File %s already exists", args.FileName)
				}
				if err := utils.WriteFileAtomic(path, []byte(args.Contents), 0o644); err != nil {
					return fmt.Sprintf("Error saving file: %v", err)
				}
				return args.FileName
			},
		},
		{
			Name:        "list_files",
			Description: "List the files in the agent workspace.",
			Parameters:  ai.Object(nil),
			Handler: func(_ context.Context, _ json.RawMessage) string {
				entries, err := os.ReadDir(k.Workspace)
				if errors.Is(err, os.ErrNotExist) {
					return "[]"
				}
				if err != nil {
					return fmt.Sprintf("Error listing files: %v", err)
				}
				names := []string{}
				for _, e := range entries {
					if !e.IsDir() {
						names = append(names, e.Name())
					}
				}
				sort.Strings(names)
				data, _ := json.Marshal(names)
				return string(data)
			},
		},
	}
}

// resolve maps a file name onto the workspace, rejecting anything outside it
func (k *Toolkit) resolve(name string) (string, error) {
	if k.Workspace == "" {
		return "", errors.New("no workspace configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("empty file name")
	}
	if filepath.IsAbs(name) {
		return "", errors.New("absolute paths are not allowed")
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return "", errors.New("path traversal")
		}
	}
	root, err := filepath.Abs(k.Workspace)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.Clean(name))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", errors.New("outside workspace")
	}
	return path, nil
}
