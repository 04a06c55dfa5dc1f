package material

import (
	"path"
	"strings"
	"sync"

	"github.com/binzume/modelbinconv/bundle"
	"github.com/binzume/modelbinconv/logger"
)

// Well-known parameter hashes.
const (
	HashDiffuseTexture uint32 = 0x6DD98CD9
	HashDiffuseColor   uint32 = 0xEF5CCE09
	HashNormalTexture  uint32 = 0x8C658791
)

var DefaultDiffuseColor = [4]float32{0.8, 0.8, 0.8, 1}

const DefaultName = "Material"

// DefaultMaxDepth bounds the parent chain below a material instance.
const DefaultMaxDepth = 16

// Params maps parameter hashes to their most derived definition.
type Params map[uint32]*Parameter

func (p Params) merge(src Params) {
	for h, v := range src {
		p[h] = v
	}
}

func (p Params) add(list []*Parameter) {
	for _, v := range list {
		p[v.Hash] = v
	}
}

type Material struct {
	Name string
	// ParentPath is the raw parent reference, SourceFile its base name.
	ParentPath     string
	SourceFile     string
	DiffuseColor   [4]float32
	DiffuseTexture string
	NormalTexture  string
	Params         Params
}

// Default returns the material used for meshes without a material blob.
func Default() *Material {
	return &Material{Name: DefaultName, DiffuseColor: DefaultDiffuseColor, Params: Params{}}
}

// DisplayName is the stem of the parent file when useFileName is set and a
// parent is known, the internal name otherwise.
func (m *Material) DisplayName(useFileName bool) string {
	if useFileName && m.SourceFile != "" {
		return strings.TrimSuffix(m.SourceFile, path.Ext(m.SourceFile))
	}
	return m.Name
}

func (m *Material) Param(hash uint32) *Parameter {
	return m.Params[hash]
}

func (m *Material) extract() {
	if p := m.Params[HashDiffuseTexture]; p != nil && p.Path != "" {
		m.DiffuseTexture = p.Path
	}
	if p := m.Params[HashDiffuseColor]; p != nil && p.Type == ParamColor {
		m.DiffuseColor = p.Color
	}
	if p := m.Params[HashNormalTexture]; p != nil && p.Path != "" {
		m.NormalTexture = p.Path
	}
}

type Resolver interface {
	Resolve(ref string) (string, bool)
}

// Loader decodes material instances and caches the merged parameters of every
// parent file by resolved path. It is safe for concurrent use.
type Loader struct {
	resolver Resolver
	log      logger.Logger
	MaxDepth int

	mu     sync.RWMutex
	chains map[string]Params
}

func NewLoader(resolver Resolver, log logger.Logger) *Loader {
	return &Loader{
		resolver: resolver,
		log:      log,
		MaxDepth: DefaultMaxDepth,
		chains:   map[string]Params{},
	}
}

// Definition is the content of a material bundle before the parent chain is
// resolved.
type Definition struct {
	Parent string
	Params []*Parameter
}

// ReadDefinition reads the parent reference (MATI, else MATL) and the
// parameter block (MTPR, else DFPR) of a material bundle. On an unknown
// parameter type the parameters read so far are returned with the error.
func ReadDefinition(bnd *bundle.Bundle) (*Definition, error) {
	d := &Definition{}
	if pb := bnd.FirstOf(bundle.TagMATI, bundle.TagMATL); pb != nil {
		d.Parent = pb.Stream().String7()
	}
	var err error
	if pb := bnd.FirstOf(bundle.TagMTPR, bundle.TagDFPR); pb != nil {
		d.Params, err = DecodeParameters(pb)
	}
	return d, err
}

// Decode reads a material instance from a MatI blob. The blob payload is a
// nested bundle holding an optional parent reference and a parameter block.
// The parent chain is merged first so the instance's own parameters win.
func (l *Loader) Decode(b *bundle.Blob) *Material {
	m := Default()
	m.Name = b.MetaString(bundle.TagName, DefaultName)

	def, err := ReadDefinition(bundle.Decode(b.Data()))
	if err != nil {
		l.log.Warn("material parameters", "material", m.Name, "kept", len(def.Params), "err", err)
	}
	if def.Parent != "" {
		m.ParentPath = def.Parent
		m.SourceFile = path.Base(strings.ReplaceAll(def.Parent, `\`, "/"))
		parent, _ := l.chain(def.Parent, map[string]bool{}, 1)
		m.Params.merge(parent)
	}
	m.Params.add(def.Params)
	m.extract()
	return m
}

// chain returns the merged parameters of the material file ref points to,
// including its own ancestors. Failures yield nil. complete is false when the
// walk was cut by the cycle or depth guard; such chains are not cached since
// they depend on where the walk started.
func (l *Loader) chain(ref string, visiting map[string]bool, depth int) (params Params, complete bool) {
	if ref == "" {
		return nil, true
	}
	p, ok := l.resolver.Resolve(ref)
	if !ok {
		return nil, true
	}

	l.mu.RLock()
	cached, ok := l.chains[p]
	l.mu.RUnlock()
	if ok {
		return cached, true
	}

	if visiting[p] {
		l.log.Warn("material parent cycle", "path", p)
		return nil, false
	}
	if depth > l.MaxDepth {
		l.log.Warn("material parent chain too deep", "path", p, "depth", depth)
		return nil, false
	}
	visiting[p] = true
	defer delete(visiting, p)

	f, err := bundle.ReadFile(p)
	if err != nil {
		l.log.Warn("failed to load parent material", "path", p, "err", err)
		return nil, true
	}
	def, err := ReadDefinition(f.Bundle)
	if err != nil {
		l.log.Warn("parent material parameters", "path", p, "kept", len(def.Params), "err", err)
	}
	ancestors, complete := l.chain(def.Parent, visiting, depth+1)
	params = Params{}
	params.merge(ancestors)
	params.add(def.Params)
	if !complete {
		return params, false
	}

	l.mu.Lock()
	if existing, ok := l.chains[p]; ok {
		params = existing
	} else {
		l.chains[p] = params
	}
	l.mu.Unlock()
	return params, true
}

// CachedChains reports how many parent files have been loaded.
func (l *Loader) CachedChains() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chains)
}
