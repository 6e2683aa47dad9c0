package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/jonwraymond/portalcache/remote"
)

// DefaultPath is the backend resource holding the signed-in user's draft.
const DefaultPath = "admission/draft"

// HTTPRemote stores drafts through the backend's admission draft endpoint:
// POST to save, GET to load and DELETE to clear the same path.
type HTTPRemote struct {
	client remote.Accessor
	path   string
}

// NewHTTPRemote creates a Remote over client. An empty path uses DefaultPath.
func NewHTTPRemote(client remote.Accessor, path string) *HTTPRemote {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	return &HTTPRemote{client: client, path: path}
}

type saveRequest struct {
	DraftData   json.RawMessage `json:"draftData"`
	CurrentStep int             `json:"currentStep"`
}

// Save implements Remote. Fields the backend leaves out of its reply are
// filled from the request.
func (h *HTTPRemote) Save(ctx context.Context, data json.RawMessage, step int) (Record, error) {
	var raw json.RawMessage
	if err := h.client.Post(ctx, h.path, saveRequest{DraftData: data, CurrentStep: step}, &raw); err != nil {
		return Record{}, err
	}
	rec, err := parseRecord(raw)
	if err != nil {
		return Record{}, err
	}
	if len(rec.DraftData) == 0 {
		rec.DraftData = data
	}
	if rec.CurrentStep == 0 {
		rec.CurrentStep = step
	}
	return rec, nil
}

// Load implements Remote.
func (h *HTTPRemote) Load(ctx context.Context) (Record, error) {
	var raw json.RawMessage
	if err := h.client.Get(ctx, h.path, &raw); err != nil {
		return Record{}, err
	}
	return parseRecord(raw)
}

// Delete implements Remote.
func (h *HTTPRemote) Delete(ctx context.Context) error {
	return h.client.Delete(ctx, h.path, nil)
}

// parseRecord accepts a bare record or one nested under "data".
func parseRecord(raw json.RawMessage) (Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Record{}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Record{}, err
	}
	if nested, ok := probe["data"]; ok {
		if _, direct := probe["draftData"]; !direct {
			return parseRecord(nested)
		}
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

var _ Remote = (*HTTPRemote)(nil)
