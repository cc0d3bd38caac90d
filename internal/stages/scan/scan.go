// Package scan implements the scan stage (spec §4.4.1): walk a root
// directory, skip symlinked duplicates, and upsert an Item per
// recognized audio file.
//
// Grounded on the teacher's walker.go (realpath-based duplicate
// detection over a flat extension allowlist) and on dhowden/tag
// (evidenced by its own manifest and several other pack repos) for
// embedded-tag extraction, replacing the teacher's CGO
// wtolson/go-taglib dependency with a pure-Go one.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/yookoala/realpath"

	"github.com/oxur/tessitura/internal/audio"
	"github.com/oxur/tessitura/internal/logging"
	"github.com/oxur/tessitura/internal/model"
	"github.com/oxur/tessitura/internal/store"
	"github.com/oxur/tessitura/internal/workflow"
)

// Stage walks a root directory into catalog Items. Its work-item id is
// the root directory path, not an Item id — scan operates at a coarser
// granularity than the stages downstream of it.
type Stage struct {
	Store  *store.Store
	Log    *logging.Logger
}

// New returns a scan Stage writing into st.
func New(st *store.Store, log *logging.Logger) *Stage {
	if log == nil {
		log = logging.Nop()
	}
	return &Stage{Store: st, Log: log}
}

// Name implements workflow.Stage.
func (s *Stage) Name() string { return "scan" }

// Execute implements workflow.Stage. itemID is the root directory path.
func (s *Stage) Execute(_ context.Context, itemID string, _ *workflow.Context) workflow.Outcome {
	visited := map[string]bool{}

	err := filepath.WalkDir(itemID, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.Log.Warning.Printf("scan: %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !model.KnownExtensions[ext] {
			return nil
		}

		rpath, err := realpath.Realpath(path)
		if err != nil {
			s.Log.Warning.Printf("scan: cannot resolve real path for %s: %v", path, err)
			return nil
		}
		if visited[rpath] {
			return nil
		}
		visited[rpath] = true

		if err := s.scanOne(path, ext); err != nil {
			s.Log.Warning.Printf("scan: %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		return workflow.Failed(err)
	}
	return workflow.Complete()
}

func (s *Stage) scanOne(path, ext string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	format := model.FormatFromExtension(ext)
	item := model.NewItem(path, format, info.Size(), info.ModTime())

	if existing, err := s.Store.GetItemByPath(path); err == nil {
		if existing.Size == item.Size && existing.ModTime.Equal(item.ModTime) {
			return nil // unchanged since the last walk
		}
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	}

	if info.Size() > 0 {
		item.Tags = readTags(path)
		if format == model.FormatWAV {
			if duration, err := audio.WAVDuration(path); err == nil {
				item.DurationSecs = duration
			}
		}
	}

	return s.Store.UpsertItem(item)
}

func readTags(path string) model.EmbeddedTags {
	f, err := os.Open(path)
	if err != nil {
		return model.EmbeddedTags{}
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		return model.EmbeddedTags{}
	}

	track, _ := md.Track()
	disc, _ := md.Disc()
	return model.EmbeddedTags{
		Title:       md.Title(),
		Artist:      md.Artist(),
		Album:       md.Album(),
		AlbumArtist: md.AlbumArtist(),
		Track:       track,
		Disc:        disc,
		Year:        md.Year(),
		Genre:       md.Genre(),
	}
}
