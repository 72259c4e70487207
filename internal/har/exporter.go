package har

import (
	"encoding/json"
	"time"

	"github.com/sadopc/jsonstash/internal/mock"
	"github.com/sadopc/jsonstash/pkg/version"
)

// Export creates a HAR 1.2 archive with one entry per route, as the mock
// server at baseURL would answer it.
func Export(routes []mock.Route, baseURL string) ([]byte, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	h := HAR{
		Log: HARLog{
			Version: "1.2",
			Creator: &Creator{Name: "jsonstash", Version: version.Version},
			Entries: make([]HAREntry, 0, len(routes)),
		},
	}

	for _, r := range routes {
		h.Log.Entries = append(h.Log.Entries, HAREntry{
			StartedDateTime: now,
			Request: HARRequest{
				Method:      "GET",
				URL:         baseURL + r.Path,
				HTTPVersion: "HTTP/1.1",
				Headers:     []HARHeader{},
				QueryString: []HARQuery{},
				HeadersSize: -1,
				BodySize:    0,
			},
			Response: buildHARResponse(r),
		})
	}

	return json.MarshalIndent(h, "", "  ")
}

func buildHARResponse(r mock.Route) HARResponse {
	resp := r.Response
	harResp := HARResponse{
		Status:      200,
		StatusText:  "OK",
		HTTPVersion: "HTTP/1.1",
		Headers:     []HARHeader{},
		HeadersSize: -1,
		BodySize:    len(resp.Body),
		Content: HARContent{
			Size:     len(resp.Body),
			MimeType: resp.ContentType(),
			Text:     resp.Body,
		},
	}

	replay := resp.ReplayHeaders()
	for _, name := range resp.HeaderNames() {
		if v, ok := replay[name]; ok {
			harResp.Headers = append(harResp.Headers, HARHeader{Name: name, Value: v})
		}
	}

	return harResp
}
