package memory

import (
	"encoding/json"
	"strings"
	"time"
)

// EmptyCollection is the serialized form of a new container.
var EmptyCollection = []byte("[]")

// ProfileEntry is one element of the user profile collection.
type ProfileEntry struct {
	Kind      Kind      `json:"entry_type"`
	Text      string    `json:"entry"`
	Timestamp Timestamp `json:"timestamp"`
}

// TraitEntry is one element of the self-trait collection.
type TraitEntry struct {
	Text      string    `json:"trait"`
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp is written as RFC 3339 in UTC. Reading also accepts ISO 8601
// without a zone, which is taken as UTC; anything else reads as the zero time.
type Timestamp struct {
	time.Time
}

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Time = time.Time{}
		return nil
	}
	raw = strings.TrimSpace(raw)

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	t.Time = time.Time{}
	return nil
}
