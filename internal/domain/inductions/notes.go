package inductions

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Notes is stored as JSON text in the notes column.
type Notes struct {
	PortalURL       string           `json:"portalUrl,omitempty"`
	Credentials     *NoteCredentials `json:"credentials,omitempty"`
	AdditionalNotes string           `json:"additionalNotes,omitempty"`
}

type NoteCredentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

func (n Notes) IsZero() bool {
	return n.PortalURL == "" && n.AdditionalNotes == "" &&
		(n.Credentials == nil || (n.Credentials.Username == "" && n.Credentials.Password == ""))
}

// EncodeNotes returns "" for empty notes so the column stays NULL.
func EncodeNotes(n Notes) (string, error) {
	if n.Credentials != nil && n.Credentials.Username == "" && n.Credentials.Password == "" {
		n.Credentials = nil
	}
	if n.IsZero() {
		return "", nil
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeNotes reads the stored text. Anything that is not a notes object is
// treated as legacy free text.
func DecodeNotes(raw string) Notes {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Notes{}
	}
	if strings.HasPrefix(trimmed, "{") {
		var n Notes
		if err := json.Unmarshal([]byte(trimmed), &n); err == nil {
			return n
		}
	}
	return Notes{AdditionalNotes: raw}
}

// UnmarshalJSON also accepts a plain string, read the same way as stored text.
func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*n = Notes{}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*n = DecodeNotes(text)
		return nil
	}
	type plain Notes
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*n = Notes(p)
	return nil
}
