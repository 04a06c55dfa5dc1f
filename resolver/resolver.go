// Package resolver maps "Game:\..." asset references to files under a car
// folder and an optional game root.
package resolver

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/binzume/modelbinconv/logger"
	"golang.org/x/text/cases"
)

const (
	gamePrefix = "game:"
	// upwardLevels is the number of folders tried from the base folder up.
	upwardLevels = 5
)

type Stats struct {
	Lookups      int `json:"lookups"`
	CacheHits    int `json:"cache_hits"`
	IndexHits    int `json:"index_hits"`
	DirectHits   int `json:"direct_hits"`
	UpwardHits   int `json:"upward_hits"`
	GameRootHits int `json:"game_root_hits"`
	Misses       int `json:"misses"`
	Scans        int `json:"scans"`
	Indexed      int `json:"indexed"`
}

type result struct {
	path string
	ok   bool
}

// Resolver finds referenced files by file name first, then by the path
// relative to the base folder, its parents and the game root. The file index
// is built on first use. Results, including misses, are cached. It is safe for
// concurrent use.
type Resolver struct {
	base     string
	gameRoot string
	log      logger.Logger

	indexOnce sync.Once
	index     map[string]string

	mu    sync.Mutex
	cache map[string]result
	stats Stats
}

func New(base, gameRoot string, log logger.Logger) *Resolver {
	return &Resolver{
		base:     base,
		gameRoot: gameRoot,
		log:      log,
		cache:    map[string]result{},
	}
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func (r *Resolver) hasGameRoot() bool {
	if r.gameRoot == "" {
		return false
	}
	st, err := os.Stat(r.gameRoot)
	return err == nil && st.IsDir()
}

func (r *Resolver) buildIndex() {
	r.index = map[string]string{}
	roots := []string{r.base}
	if r.hasGameRoot() {
		roots = append(roots, r.gameRoot)
	}
	for _, root := range roots {
		r.log.Debug("indexing files", "root", root)
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				return nil
			}
			key := fold(d.Name())
			if _, ok := r.index[key]; !ok {
				r.index[key] = p
			}
			return nil
		})
	}
	r.mu.Lock()
	r.stats.Scans++
	r.stats.Indexed = len(r.index)
	r.mu.Unlock()
	r.log.Debug("file index built", "files", len(r.index))
}

// normalize converts both separator styles to the host separator.
func normalize(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}

func exists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// Resolve returns the file a reference points to.
func (r *Resolver) Resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	key := fold(ref)

	r.mu.Lock()
	r.stats.Lookups++
	if res, ok := r.cache[key]; ok {
		r.stats.CacheHits++
		r.mu.Unlock()
		return res.path, res.ok
	}
	r.mu.Unlock()

	r.indexOnce.Do(r.buildIndex)

	name := filepath.Base(normalize(ref))
	p, how := r.lookup(ref, name)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch how {
	case "index":
		r.stats.IndexHits++
	case "direct":
		r.stats.DirectHits++
	case "upward":
		r.stats.UpwardHits++
	case "game_root":
		r.stats.GameRootHits++
	default:
		r.stats.Misses++
		r.log.Warn("could not resolve path", "ref", ref, "file", name, "base", r.base,
			"hint", "place a file named "+name+" under the car folder or its parents")
	}
	res := result{path: p, ok: how != ""}
	r.cache[key] = res
	if res.ok {
		r.log.Debug("resolved", "ref", ref, "path", p, "via", how)
	}
	return res.path, res.ok
}

func (r *Resolver) lookup(ref, name string) (string, string) {
	if p, ok := r.index[fold(name)]; ok {
		return p, "index"
	}

	rel := ref
	if len(rel) >= len(gamePrefix) && strings.EqualFold(rel[:len(gamePrefix)], gamePrefix) {
		rel = rel[len(gamePrefix):]
	}
	rel = strings.TrimLeft(normalize(rel), string(filepath.Separator))

	if p := filepath.Join(r.base, rel); exists(p) {
		return p, "direct"
	}
	dir := r.base
	for i := 0; i < upwardLevels; i++ {
		if p := filepath.Join(dir, rel); exists(p) {
			return p, "upward"
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if r.hasGameRoot() {
		if p := filepath.Join(r.gameRoot, rel); exists(p) {
			return p, "game_root"
		}
	}
	return "", ""
}

func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Resolver) Base() string {
	return r.base
}
