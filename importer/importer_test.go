package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/binzume/modelbinconv/internal/toycar"
	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/material"
	"github.com/binzume/modelbinconv/modelbin"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/pkg/errors"
)

func car(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := toycar.WriteCar(dir); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestImportCar(t *testing.T) {
	dir := car(t)
	imp := New(DefaultOptions(dir), logger.Discard())
	results, err := imp.ImportAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatal("results", results)
	}
	model := results[0].Model
	if model.Name != "body" || len(model.Bones) != 1 || model.Bones[0].Name != "root" {
		t.Error("model", model.Name, model.Bones)
	}
	if len(model.Meshes) != 1 {
		t.Fatal("meshes", len(model.Meshes))
	}
	mesh := model.Meshes[0]
	if mesh.DisplayName != "body carpaint" || mesh.VertexCount() != 4 || len(mesh.Faces) != 2 {
		t.Error("mesh", mesh.DisplayName, mesh.VertexCount(), mesh.Faces)
	}

	mat := mesh.Material
	if mat.Name != "paint" || mat.DiffuseColor != [4]float32{1, 0, 0, 1} {
		t.Error("material", mat.Name, mat.DiffuseColor)
	}
	if mat.DiffuseTexture == nil || len(mat.DiffuseTexture.DDS) != swatchbin.DDSHeaderSize+16 {
		t.Fatal("diffuse texture", mat.DiffuseTexture)
	}
	if mat.DiffuseTexture.DXGI != swatchbin.DXGIBC3UNormSRGB || mat.NormalTexture != nil {
		t.Error("textures", mat.DiffuseTexture.DXGI, mat.NormalTexture)
	}

	s := imp.Stats()
	if s.Textures.Loads != 1 || s.Materials != 1 || s.Resolver.Misses != 0 {
		t.Error("stats", s)
	}
}

func TestImportOptions(t *testing.T) {
	dir := car(t)
	file := filepath.Join(dir, "body.modelbin")

	opts := DefaultOptions(dir)
	opts.UseMaterialFilename = false
	m, err := New(opts, logger.Discard()).ImportFile(file)
	if err != nil || m.Meshes[0].DisplayName != "body paint" {
		t.Error("internal material name", m, err)
	}

	opts = DefaultOptions(dir)
	opts.Materials = false
	imp := New(opts, logger.Discard())
	m, err = imp.ImportFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if mat := m.Meshes[0].Material; m.Meshes[0].DisplayName != "body Material" ||
		mat.DiffuseColor != material.DefaultDiffuseColor || mat.DiffuseTexture != nil {
		t.Error("materials disabled", m.Meshes[0].DisplayName, mat.DiffuseColor)
	}
	if imp.Stats().Resolver.Lookups != 0 {
		t.Error("nothing should be resolved", imp.Stats())
	}

	opts = DefaultOptions(dir)
	opts.LODMask = 0x02
	m, err = New(opts, logger.Discard()).ImportFile(file)
	if err != nil || len(m.Meshes) != 0 {
		t.Error("LOD1 only", m, err)
	}
}

func TestImportMaterialFallback(t *testing.T) {
	dir := t.TempDir()
	mesh := toycar.QuadMesh("wheel", 1)
	mesh.MaterialID = 3
	broken := toycar.QuadMesh("broken", 1)
	broken.LayoutID = 5
	if err := os.WriteFile(filepath.Join(dir, "wheel.modelbin"), toycar.Quad(nil, mesh, broken), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := New(DefaultOptions(dir), logger.Discard()).ImportFile(filepath.Join(dir, "wheel.modelbin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Meshes) != 1 || m.Skipped != 1 {
		t.Fatal("meshes", len(m.Meshes), m.Skipped)
	}
	if m.Meshes[0].DisplayName != "wheel Material" || m.Meshes[0].Material.DiffuseColor != material.DefaultDiffuseColor {
		t.Error("out of range material id", m.Meshes[0].DisplayName)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	dir := car(t)
	junk := filepath.Join(dir, "sub", "JUNK.MODELBIN")
	if err := os.MkdirAll(filepath.Dir(junk), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(junk, []byte("not a bundle"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := Discover(dir)
	if err != nil || len(files) != 2 {
		t.Fatal("discover", files, err)
	}
	opts := DefaultOptions(dir)
	opts.Workers = 2
	results := New(opts, logger.Discard()).Run(context.Background(), files)
	ok, failed := 0, 0
	for _, r := range results {
		if r.Err == nil && r.Model != nil {
			ok++
		} else if errors.Cause(r.Err) == modelbin.ErrNoModel {
			failed++
		}
	}
	if ok != 1 || failed != 1 {
		t.Error("results", results)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range New(opts, logger.Discard()).Run(ctx, files) {
		if r.Err != context.Canceled || r.Path == "" {
			t.Error("cancelled", r)
		}
	}
}
