package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

const webFetchDescription = `Fetches content from a URL.

Usage notes:
  - The URL must start with http:// or https://
  - format "markdown" converts HTML pages to markdown, "text" strips
    markup, "html" returns the raw page
  - Results are truncated above the 5MB limit
  - Transient HTTP failures are retried with exponential backoff`

const (
	maxResponseSize   = 5 * 1024 * 1024
	fetchTimeout      = 30 * time.Second
	fetchMaxRetries   = 3
	fetchRetryInitial = 500 * time.Millisecond
	fetchRetryMax     = 5 * time.Second
)

// WebFetchTool fetches web content for the model.
type WebFetchTool struct {
	client *http.Client
}

// WebFetchInput represents the input for the web_fetch tool.
type WebFetchInput struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// NewWebFetchTool creates a new web_fetch tool.
func NewWebFetchTool() *WebFetchTool {
	return &WebFetchTool{client: &http.Client{Timeout: fetchTimeout}}
}

func (t *WebFetchTool) Name() string                 { return "web_fetch" }
func (t *WebFetchTool) Category() types.ToolCategory { return types.CategoryExternal }
func (t *WebFetchTool) Action() types.ActionKind     { return types.ActionExternal }
func (t *WebFetchTool) Description() string          { return webFetchDescription }
func (t *WebFetchTool) RequiresConfirmation() bool   { return false }

func (t *WebFetchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "The URL to fetch content from"
			},
			"format": {
				"type": "string",
				"enum": ["text", "markdown", "html"],
				"description": "Output format (default: markdown)"
			}
		},
		"required": ["url"]
	}`)
}

func (t *WebFetchTool) ConfirmationMessage(ctx context.Context, input json.RawMessage, toolCtx *Context) string {
	var params WebFetchInput
	_ = json.Unmarshal(input, &params)
	return fmt.Sprintf("Fetch %s", params.URL)
}

func (t *WebFetchTool) Execute(ctx context.Context, input json.RawMessage, toolCtx *Context) (*Result, error) {
	var params WebFetchInput
	if err := json.Unmarshal(input, &params); err != nil {
		return Errorf("invalid input: %v", err), nil
	}
	if !strings.HasPrefix(params.URL, "http://") && !strings.HasPrefix(params.URL, "https://") {
		return Errorf("URL must start with http:// or https://"), nil
	}
	format := params.Format
	if format == "" {
		format = "markdown"
	}
	if format != "text" && format != "markdown" && format != "html" {
		return Errorf("format must be 'text', 'markdown', or 'html'"), nil
	}

	body, contentType, err := t.fetch(ctx, params.URL)
	if err != nil {
		return Errorf("request failed: %v", err), nil
	}

	output := body
	if strings.Contains(contentType, "text/html") {
		switch format {
		case "markdown":
			if output, err = htmlToMarkdown(body); err != nil {
				return Errorf("failed to convert HTML to markdown: %v", err), nil
			}
		case "text":
			if output, err = htmlToText(body); err != nil {
				return Errorf("failed to extract text from HTML: %v", err), nil
			}
		}
	}

	return Text(fmt.Sprintf("%s (%s)", params.URL, contentType), output), nil
}

// fetch performs the GET with retries on transient failures. Client errors
// other than 429 do not retry.
func (t *WebFetchTool) fetch(ctx context.Context, url string) (string, string, error) {
	var body, contentType string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "inkwell/1.0")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			err := fmt.Errorf("status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}
		if resp.ContentLength > maxResponseSize {
			return backoff.Permanent(fmt.Errorf("response too large (exceeds 5MB limit)"))
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
		if err != nil {
			return err
		}
		if len(data) > maxResponseSize {
			return backoff.Permanent(fmt.Errorf("response too large (exceeds 5MB limit)"))
		}
		body = string(data)
		contentType = resp.Header.Get("Content-Type")
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = fetchRetryInitial
	b.MaxInterval = fetchRetryMax
	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, fetchMaxRetries), ctx))
	return body, contentType, err
}

// htmlToText extracts plain text, removing scripts, styles and other
// non-content elements.
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, iframe, object, embed").Remove()
	return strings.TrimSpace(doc.Text()), nil
}

// htmlToMarkdown converts an HTML page to markdown.
func htmlToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
	})
	converter.Remove("script", "style", "meta", "link")
	return converter.ConvertString(html)
}
