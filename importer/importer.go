// Package importer loads every modelbin of a car folder together with the
// materials and textures the meshes reference.
package importer

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/binzume/modelbinconv/bundle"
	"github.com/binzume/modelbinconv/geom"
	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/material"
	"github.com/binzume/modelbinconv/modelbin"
	"github.com/binzume/modelbinconv/resolver"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/pkg/errors"
)

const Ext = ".modelbin"

type Options struct {
	CarFolder string
	GameRoot  string
	// LODMask selects levels of detail, bit n for LODn.
	LODMask uint16
	// Materials enables material and texture loading. Without it every mesh
	// gets the default material.
	Materials           bool
	UseMaterialFilename bool
	Workers             int
}

func DefaultOptions(carFolder string) *Options {
	return &Options{
		CarFolder:           carFolder,
		LODMask:             1,
		Materials:           true,
		UseMaterialFilename: true,
		Workers:             4,
	}
}

// Mesh is an assembled mesh with its resolved material.
type Mesh struct {
	*modelbin.Geometry
	// DisplayName is the mesh name followed by the material name.
	DisplayName string
	Material    *Material
}

// Material is a material instance with its textures loaded.
type Material struct {
	*material.Material
	DisplayName    string
	DiffuseTexture *swatchbin.Texture
	NormalTexture  *swatchbin.Texture
}

// Bone is a skeleton bone. Transform is bone-to-root in the source axes.
type Bone struct {
	Name      string
	Parent    int16
	Transform geom.Matrix4
}

// Model is the content of one modelbin file.
type Model struct {
	Name    string
	Path    string
	Version bundle.Version
	Meshes  []*Mesh
	Bones   []*Bone
	// Skipped counts visible meshes that failed to assemble.
	Skipped int
}

// Result is the outcome of importing one file.
type Result struct {
	Path  string
	Model *Model
	Err   error
}

type Stats struct {
	Resolver  resolver.Stats       `json:"resolver"`
	Textures  swatchbin.CacheStats `json:"textures"`
	Materials int                  `json:"material_chains"`
}

// Importer holds the caches of one import run. It is safe for concurrent use.
type Importer struct {
	opts      Options
	log       logger.Logger
	resolver  *resolver.Resolver
	materials *material.Loader
	textures  *swatchbin.Cache

	defaultOnce sync.Once
	fallback    *Material
}

func New(opts *Options, log logger.Logger) *Importer {
	res := resolver.New(opts.CarFolder, opts.GameRoot, log.WithGroup("resolver"))
	return &Importer{
		opts:      *opts,
		log:       log,
		resolver:  res,
		materials: material.NewLoader(res, log.WithGroup("material")),
		textures:  swatchbin.NewCache(res, log.WithGroup("texture")),
	}
}

func (imp *Importer) Resolver() *resolver.Resolver {
	return imp.resolver
}

func (imp *Importer) Textures() *swatchbin.Cache {
	return imp.textures
}

func (imp *Importer) Stats() Stats {
	return Stats{
		Resolver:  imp.resolver.Stats(),
		Textures:  imp.textures.Stats(),
		Materials: imp.materials.CachedChains(),
	}
}

// Discover returns every modelbin under dir, sorted.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), Ext) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ImportAll discovers and imports the car folder.
func (imp *Importer) ImportAll(ctx context.Context) ([]Result, error) {
	files, err := Discover(imp.opts.CarFolder)
	if err != nil {
		return nil, errors.Wrap(err, "scan car folder")
	}
	if len(files) == 0 {
		imp.log.Warn("no modelbin files found", "folder", imp.opts.CarFolder)
	}
	return imp.Run(ctx, files), nil
}

// Run imports files on a worker pool. A failing file never stops the others.
// Files not started before ctx is done report ctx.Err().
func (imp *Importer) Run(ctx context.Context, files []string) []Result {
	results := make([]Result, len(files))
	workers := max(imp.opts.Workers, 1)

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i].Path = files[i]
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Model, results[i].Err = imp.ImportFile(files[i])
				if results[i].Err != nil {
					imp.log.Error("import failed", "file", files[i], "err", results[i].Err)
				}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// ImportFile decodes one modelbin and assembles its visible meshes.
func (imp *Importer) ImportFile(path string) (*Model, error) {
	f, err := bundle.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mf, err := modelbin.Decode(f.Bundle)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	log := imp.log.With("file", filepath.Base(path))
	if mf.NewerFormat() {
		log.Info("bundle version is newer than expected, decoding anyway", "version", f.Version)
	}
	if f.Truncated {
		log.Warn("bundle directory is truncated")
	}

	model := &Model{
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:    path,
		Version: f.Version,
	}
	if mf.Skeleton != nil {
		for _, b := range mf.Skeleton.Bones {
			model.Bones = append(model.Bones, &Bone{Name: b.Name, Parent: b.Parent, Transform: b.Transform})
		}
	}

	materials := map[int16]*Material{}
	for _, m := range mf.VisibleMeshes(imp.opts.LODMask) {
		g, err := mf.Assemble(m)
		if err != nil {
			log.Warn("skipping mesh", "mesh", m.Name, "err", err)
			model.Skipped++
			continue
		}
		if g.BoneMissing {
			log.Warn("mesh bone out of range, vertices left in bone space", "mesh", m.Name, "bone", m.BoneIndex)
		}
		mat, ok := materials[m.MaterialID]
		if !ok {
			mat = imp.material(mf, m.MaterialID)
			materials[m.MaterialID] = mat
		}
		model.Meshes = append(model.Meshes, &Mesh{
			Geometry:    g,
			DisplayName: m.Name + " " + mat.DisplayName,
			Material:    mat,
		})
	}
	log.Debug("imported", "meshes", len(model.Meshes), "skipped", model.Skipped, "bones", len(model.Bones))
	return model, nil
}

func (imp *Importer) material(mf *modelbin.File, id int16) *Material {
	b := mf.MaterialBlob(id)
	if !imp.opts.Materials || b == nil {
		return imp.defaultMaterial()
	}
	m := &Material{Material: imp.materials.Decode(b)}
	m.DisplayName = m.Material.DisplayName(imp.opts.UseMaterialFilename)
	if m.Material.DiffuseTexture != "" {
		m.DiffuseTexture = imp.texture(m.Material.DiffuseTexture)
	}
	if m.Material.NormalTexture != "" {
		m.NormalTexture = imp.texture(m.Material.NormalTexture)
	}
	return m
}

func (imp *Importer) texture(ref string) *swatchbin.Texture {
	tex, err := imp.textures.Get(ref)
	if err != nil {
		imp.log.Debug("texture unavailable", "ref", ref, "err", err)
		return nil
	}
	return tex
}

// defaultMaterial is shared by every mesh without a usable material.
func (imp *Importer) defaultMaterial() *Material {
	imp.defaultOnce.Do(func() {
		imp.fallback = &Material{Material: material.Default(), DisplayName: material.DefaultName}
	})
	return imp.fallback
}
