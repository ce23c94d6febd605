package videolist

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Entry is a decoded JSON object carrying a string "video" field. The map is
// the node from the document tree itself, so assigning to it rewrites the
// document in place.
type Entry = map[string]any

const videoField = "video"

// Collect walks any decoded JSON value depth-first and returns every object
// node whose "video" field is a string. Arrays are visited in order; object
// values are visited in sorted key order so the result is deterministic. An
// entry's own values are still scanned, so entries nested under entries are
// found too.
func Collect(node any) []Entry {
	var entries []Entry
	collect(node, &entries)
	return entries
}

func collect(node any, out *[]Entry) {
	switch v := node.(type) {
	case []any:
		for _, elem := range v {
			collect(elem, out)
		}
	case map[string]any:
		if _, ok := v[videoField].(string); ok {
			*out = append(*out, v)
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collect(v[k], out)
		}
	}
}

// Video returns the entry's video reference.
func Video(e Entry) string {
	s, _ := e[videoField].(string)
	return s
}

// SetVideo rewrites the entry's video reference in the document tree.
func SetVideo(e Entry, ref string) {
	e[videoField] = ref
}

// Load reads and decodes a whole video list document.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Save serializes the document with 2-space indentation, replacing whatever
// was at path before.
func Save(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
