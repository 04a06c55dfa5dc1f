package swatchbin

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/binzume/modelbinconv/logger"
	"github.com/pkg/errors"
)

type Resolver interface {
	Resolve(ref string) (string, bool)
}

type CacheStats struct {
	Loads    int `json:"loads"`
	PathHits int `json:"path_hits"`
	GUIDHits int `json:"guid_hits"`
	Failures int `json:"failures"`
}

type cached struct {
	tex *Texture
	err error
}

// Cache loads textures through a resolver and keeps them by resolved path.
// Swatchbins sharing a GUID are loaded once and shared.
type Cache struct {
	resolver Resolver
	log      logger.Logger

	mu     sync.RWMutex
	byPath map[string]cached
	byGUID map[string]*Texture
	stats  CacheStats
}

func NewCache(resolver Resolver, log logger.Logger) *Cache {
	return &Cache{
		resolver: resolver,
		log:      log,
		byPath:   map[string]cached{},
		byGUID:   map[string]*Texture{},
	}
}

// Get returns the texture a reference points to. Failures are cached too.
func (c *Cache) Get(ref string) (*Texture, error) {
	p, ok := c.resolver.Resolve(ref)
	if !ok {
		return nil, errors.Wrap(ErrUnresolved, ref)
	}

	c.mu.RLock()
	e, ok := c.byPath[p]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.stats.PathHits++
		c.mu.Unlock()
		return e.tex, e.err
	}

	tex, err := load(p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.byPath[p]; ok {
		return e.tex, e.err
	}
	c.stats.Loads++
	if err != nil {
		c.stats.Failures++
		c.log.Warn("failed to load texture", "path", p, "err", err)
	} else if tex.Header != nil {
		if shared, ok := c.byGUID[tex.GUID]; ok {
			c.stats.GUIDHits++
			tex = shared
		} else {
			c.byGUID[tex.GUID] = tex
		}
	}
	c.byPath[p] = cached{tex: tex, err: err}
	return tex, err
}

// ByGUID returns a loaded swatchbin texture.
func (c *Cache) ByGUID(guid string) *Texture {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byGUID[guid]
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func load(p string) (*Texture, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".swatchbin":
		return Load(p)
	case ".dds":
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return &Texture{Path: p, DDS: data, Raw: data}, nil
	default:
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return &Texture{Path: p, Raw: data}, nil
	}
}
