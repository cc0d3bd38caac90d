package vocab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	body := `[
		{"uri": "http://id.loc.gov/genre/classical", "label": "Classical music"},
		{"uri": "http://id.loc.gov/genre/baroque", "label": "Baroque music", "broader_uri": "http://id.loc.gov/genre/classical", "scope_note": "c. 1600-1750"}
	]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	terms, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(terms) != 2 {
		t.Fatalf("len(terms) = %d, want 2", len(terms))
	}
	if terms[1].BroaderURI != terms[0].URI {
		t.Errorf("child BroaderURI = %q, want %q", terms[1].BroaderURI, terms[0].URI)
	}
	if terms[1].ScopeNote != "c. 1600-1750" {
		t.Errorf("ScopeNote = %q", terms[1].ScopeNote)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing snapshot file")
	}
}
