// Package websearch provides a web search tool backed by the Tavily API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/tessellate-ai/agentic/llmutils"
	"github.com/tessellate-ai/agentic/schema"
	"github.com/tessellate-ai/agentic/tools"
)

const ToolName = "search"

// SearchRequest represents the tool input.
type SearchRequest struct {
	Query string `json:"query" jsonschema:"description=The query to search the web for"`
}

// SearchResult represents the structure of a search response.
type SearchResult struct {
	Results []tavilyModels.SearchResult `json:"results"`
	Answer  string                      `json:"answer,omitempty"`
}

// Tool is a tool that provides web search functionality.
type Tool struct {
	name        string
	description string
	params      []schema.Parameter

	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ tools.Tool[SearchRequest, SearchResult] = (*Tool)(nil)

func New() (*Tool, error) {
	apiKey := os.Getenv("TAVILY_API_KEY")
	if apiKey == "" {
		return nil, errors.New("TAVILY_API_KEY is not set")
	}

	def, err := schema.Reflect(reflect.TypeOf(SearchRequest{}))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "A web search engine. Use it to answer questions about current events and facts not found in your knowledge base.",
		params:      schema.ParseParameters(def),
		apiKey:      apiKey,
		httpClient:  http.DefaultClient,
	}, nil
}

func (t *Tool) WithBaseURL(baseURL string) *Tool {
	t.baseURL = baseURL
	return t
}

func (t *Tool) WithHTTPClient(client *http.Client) *Tool {
	t.httpClient = client
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() []schema.Parameter {
	return t.params
}

func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req.Query == "" {
		return nil, errors.New("invalid request: empty query")
	}

	client := tavilygo.NewClient(t.apiKey)
	if t.baseURL != "" {
		client.BaseURL = t.baseURL
	}
	if t.httpClient != nil {
		client.HTTPClient = t.httpClient
	}

	searchResp, err := tavilygo.Search(client, tavilyModels.SearchRequest{
		Query:         req.Query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to perform search")
	}

	return &SearchResult{
		Results: searchResp.Results,
		Answer:  searchResp.Answer,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req SearchRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		// unstructured input is the query itself
		req.Query = input
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func (r *SearchResult) String() string {
	var buf bytes.Buffer
	if r.Answer != "" {
		fmt.Fprintf(&buf, "ANSWER: %s\n", r.Answer)
	}
	for _, result := range r.Results {
		fmt.Fprintf(&buf, "- URL: %s\n", result.URL)
		fmt.Fprintf(&buf, "  TITLE: %s\n", result.Title)
		fmt.Fprintf(&buf, "  CONTENT: %s\n", result.Content)
	}
	return buf.String()
}
