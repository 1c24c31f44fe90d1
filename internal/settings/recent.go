package settings

// Recent-files persistence location.
const (
	recentCategory = "workdeck"
	recentKey      = "recent_files"
)

// MaxRecentFiles bounds the recent-files list.
const MaxRecentFiles = 5

// RecentFiles is the bounded, deduplicated, most-recently-used list of file
// paths, backed by the settings store.
type RecentFiles struct {
	store *Store
	paths []string
}

// NewRecentFiles creates an empty list backed by the store.
func NewRecentFiles(store *Store) *RecentFiles {
	return &RecentFiles{store: store}
}

// Load populates the list from the persisted sequence, preserving stored
// order. Duplicates are dropped and an oversized persisted list is truncated
// to capacity.
func (r *RecentFiles) Load() {
	stored := r.store.ReadStringSlice(recentCategory, recentKey)
	r.paths = r.paths[:0]
	seen := make(map[string]bool, MaxRecentFiles)
	for _, path := range stored {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		r.paths = append(r.paths, path)
		if len(r.paths) == MaxRecentFiles {
			break
		}
	}
}

// Touch inserts the path at the front. An already-present path moves to the
// front instead of duplicating; insertion beyond capacity drops the oldest
// entry. The full list is persisted immediately.
func (r *RecentFiles) Touch(path string) error {
	if path == "" {
		return nil
	}

	next := make([]string, 0, MaxRecentFiles)
	next = append(next, path)
	for _, p := range r.paths {
		if p == path {
			continue
		}
		next = append(next, p)
		if len(next) == MaxRecentFiles {
			break
		}
	}
	r.paths = next

	r.store.Write(recentCategory, recentKey, r.List())
	return r.store.Save()
}

// List returns the paths, most recently touched first.
func (r *RecentFiles) List() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Len returns the number of stored paths.
func (r *RecentFiles) Len() int { return len(r.paths) }
