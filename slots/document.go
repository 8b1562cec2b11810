package slots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Document is the persisted form of the occupancy set.
type Document struct {
	Occupied []string `json:"ocupados"`
}

func emptyDocument() Document { return Document{Occupied: []string{}} }

// Contains reports whether slot is in the occupied set.
func (d Document) Contains(slot Slot) bool { return lo.Contains(d.Occupied, slot.Key()) }

// Slots returns the occupied slots in document order.
func (d Document) Slots() []Slot {
	return lo.Map(d.Occupied, func(key string, _ int) Slot { return slotFromKey(key) })
}

// encodeDocument renders doc with two-space indentation and a trailing newline,
// the layout external tooling diffs against.
func encodeDocument(doc Document) ([]byte, error) {
	if doc.Occupied == nil {
		doc.Occupied = []string{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// decodeDocument accepts only a JSON object. A missing "ocupados" field is an
// empty set; an explicit null, a non-array value or a key that is not
// "num-NNN" makes the whole document malformed.
func decodeDocument(data []byte) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, err
	}
	if fields == nil {
		return Document{}, errors.New("document is not a JSON object")
	}

	doc := emptyDocument()
	raw, ok := fields["ocupados"]
	if !ok {
		return doc, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Document{}, errors.New(`"ocupados" is null`)
	}
	if err := json.Unmarshal(raw, &doc.Occupied); err != nil {
		return Document{}, err
	}
	if bad, found := lo.Find(doc.Occupied, func(key string) bool { return !validKey(key) }); found {
		return Document{}, fmt.Errorf("malformed key %q", bad)
	}
	return doc, nil
}

func validKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix) && slotFromKey(key).Valid()
}
