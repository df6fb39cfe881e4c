package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/courtsidehq/courtside/internal/usecase"
)

const filePrefix = "snapshot_"

// FileStore persists run snapshots as one JSON file per run under a
// directory. File names embed the capture time so the latest snapshot
// is the lexicographically greatest file.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(ctx context.Context, snap usecase.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.RunID == "" {
		return fmt.Errorf("snapshot run id is required")
	}

	payload, err := sonic.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.RunID, err)
	}

	name := fmt.Sprintf("%s%s_%s.json", filePrefix, snap.TakenAt.UTC().Format("20060102T150405"), snap.RunID)
	path := filepath.Join(s.dir, name)

	// Write-then-rename so a crashed run never leaves a torn snapshot
	// behind for Latest to pick up.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.RunID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.RunID, err)
	}
	return nil
}

func (s *FileStore) Latest(ctx context.Context) (usecase.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return usecase.Snapshot{}, false, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return usecase.Snapshot{}, false, fmt.Errorf("read snapshot directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return usecase.Snapshot{}, false, nil
	}
	sort.Strings(names)

	payload, err := os.ReadFile(filepath.Join(s.dir, names[len(names)-1]))
	if err != nil {
		return usecase.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snap usecase.Snapshot
	if err := sonic.Unmarshal(payload, &snap); err != nil {
		return usecase.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}
