// Package vocab loads the controlled-vocabulary snapshot file (spec §6:
// a JSON array of {uri, label, broader_uri?, scope_note?}) into
// store.VocabularyTerm values, ready for store.LoadVocabularySnapshot.
//
// This is the external-collaborator boundary named in spec §1 ("vocabulary
// snapshot loaders"): parsing the file is a thin, swappable concern kept
// separate from the store's own load-ordering logic.
package vocab

import (
	"encoding/json"
	"os"

	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/tesserr"
)

// snapshotEntry mirrors one element of the JSON array on disk.
type snapshotEntry struct {
	URI        string `json:"uri"`
	Label      string `json:"label"`
	BroaderURI string `json:"broader_uri,omitempty"`
	ScopeNote  string `json:"scope_note,omitempty"`
}

// LoadSnapshot reads the JSON vocabulary snapshot at path and returns it
// as store.VocabularyTerm values, in file order (store.LoadVocabularySnapshot
// is responsible for the parent-before-child reordering, not this loader).
func LoadSnapshot(path string) ([]store.VocabularyTerm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tesserr.IO(path, err)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, tesserr.Serialization("parse vocabulary snapshot "+path, err)
	}

	out := make([]store.VocabularyTerm, 0, len(entries))
	for _, e := range entries {
		out = append(out, store.VocabularyTerm{
			URI:        e.URI,
			Label:      e.Label,
			BroaderURI: e.BroaderURI,
			ScopeNote:  e.ScopeNote,
		})
	}
	return out, nil
}
