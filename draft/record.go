package draft

import (
	"bytes"
	"encoding/json"
	"time"
)

// Record is one saved draft.
type Record struct {
	// DraftData is the form state, opaque to this package.
	DraftData json.RawMessage `json:"draftData"`

	// CurrentStep is the wizard step the user was on.
	CurrentStep int `json:"currentStep"`

	// SavedAt is when the record was written.
	SavedAt time.Time `json:"savedAt"`
}

// Empty reports whether r carries no draft.
func (r Record) Empty() bool {
	data := bytes.TrimSpace(r.DraftData)
	noData := len(data) == 0 || bytes.Equal(data, []byte("null"))
	return noData && r.CurrentStep == 0
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRecord(s string) (Record, error) {
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
