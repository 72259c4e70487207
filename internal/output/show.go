package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/tidwall/pretty"

	"github.com/sadopc/jsonstash/internal/core/response"
)

// PrintResponse writes the stored headers, a blank line and the body. JSON
// bodies are indented; color enables syntax highlighting.
func PrintResponse(w io.Writer, resp response.StorableResponse, color bool) error {
	for _, name := range resp.HeaderNames() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, resp.Headers[name]); err != nil {
			return err
		}
	}
	if len(resp.Headers) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	body := resp.Body
	lexerName := detectLexer(resp.ContentType(), body)
	if lexerName == "json" {
		body = string(pretty.Pretty([]byte(body)))
	}
	if color {
		body = highlight(body, lexerName)
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	_, err := io.WriteString(w, body)
	return err
}

// detectLexer maps Content-Type to a chroma lexer name. Bodies without a
// content type that parse as JSON are treated as JSON.
func detectLexer(contentType, body string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "html"):
		return "html"
	case strings.Contains(ct, "xml"):
		return "xml"
	case ct == "text/css":
		return "css"
	case strings.Contains(ct, "javascript"):
		return "javascript"
	case ct == "" && looksLikeJSON(body):
		return "json"
	default:
		return "text"
	}
}

func looksLikeJSON(body string) bool {
	trimmed := strings.TrimSpace(body)
	return (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) &&
		json.Valid([]byte(trimmed))
}

// highlight applies chroma syntax highlighting to source code.
func highlight(source, lexerName string) string {
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromastyles.Get("monokai")
	if style == nil {
		style = chromastyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return source
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return source
	}
	return buf.String()
}
