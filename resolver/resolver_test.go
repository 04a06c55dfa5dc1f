package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/binzume/modelbinconv/logger"
)

func touch(t *testing.T, p string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestResolveByFileName(t *testing.T) {
	base := t.TempDir()
	want := touch(t, filepath.Join(base, "textures", "body_diff.dds"))
	r := New(base, "", logger.Discard())

	for _, ref := range []string{`Game:\Media\Cars\body_diff.dds`, `game:/elsewhere/BODY_DIFF.DDS`, "body_diff.dds"} {
		if p, ok := r.Resolve(ref); !ok || p != want {
			t.Error("resolve", ref, p, ok)
		}
	}
	s := r.Stats()
	if s.IndexHits != 3 || s.Scans != 1 || s.Indexed != 1 {
		t.Error("stats", s)
	}
}

func TestResolveMissIsCached(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "a.modelbin"))
	r := New(base, filepath.Join(base, "no-such-root"), logger.Discard())

	for i := 0; i < 3; i++ {
		if p, ok := r.Resolve(`Game:\Media\Cars\missing.swatchbin`); ok || p != "" {
			t.Error("expected miss", p)
		}
	}
	// created after the first lookup; the cached miss stands
	touch(t, filepath.Join(base, "missing.swatchbin"))
	if _, ok := r.Resolve(`Game:\Media\Cars\missing.swatchbin`); ok {
		t.Error("cached miss")
	}
	s := r.Stats()
	if s.Lookups != 4 || s.CacheHits != 3 || s.Misses != 1 || s.Scans != 1 {
		t.Error("stats", s)
	}
	if _, ok := r.Resolve(""); ok {
		t.Error("empty reference")
	}
}

func TestResolveUpwards(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "Media", "Cars", "car1")
	touch(t, filepath.Join(base, "body.modelbin"))
	want := touch(t, filepath.Join(root, "Media", "Shared", "paint.materialbin"))

	r := New(base, "", logger.Discard())
	if p, ok := r.Resolve(`Game:\Media\Shared\paint.materialbin`); !ok || p != want {
		t.Error("upward search", p, ok)
	}
	if r.Stats().UpwardHits != 1 {
		t.Error("stats", r.Stats())
	}
}

func TestResolveRelativeStrategies(t *testing.T) {
	base := t.TempDir()
	gameRoot := t.TempDir()
	r := New(base, gameRoot, logger.Discard())
	r.Resolve("warmup") // builds the index while both folders are empty

	direct := touch(t, filepath.Join(base, "Media", "a.swatchbin"))
	if p, ok := r.Resolve(`GAME:\Media\a.swatchbin`); !ok || p != direct {
		t.Error("direct", p, ok)
	}
	inRoot := touch(t, filepath.Join(gameRoot, "Media", "Cars", "b.swatchbin"))
	if p, ok := r.Resolve(`Game:\Media\Cars\b.swatchbin`); !ok || p != inRoot {
		t.Error("game root", p, ok)
	}
	s := r.Stats()
	if s.DirectHits != 1 || s.GameRootHits != 1 || s.Misses != 1 {
		t.Error("stats", s)
	}
}

func TestIndexFirstWins(t *testing.T) {
	base := t.TempDir()
	gameRoot := t.TempDir()
	local := touch(t, filepath.Join(base, "x", "shared.dds"))
	touch(t, filepath.Join(gameRoot, "y", "shared.dds"))

	r := New(base, gameRoot, logger.Discard())
	if p, _ := r.Resolve(`Game:\y\shared.dds`); p != local {
		t.Error("base folder should win over game root", p)
	}
	if r.Stats().Indexed != 1 {
		t.Error("indexed", r.Stats().Indexed)
	}
}
