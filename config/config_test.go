package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	data := "car_folder: /cars/ford\nlods: [0, 2]\nmaterials: false\nworkers: 2\nembed_dds: false\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c.CarFolder != "/cars/ford" || c.Materials || c.Workers != 2 || c.EmbedDDS {
		t.Error("values", c)
	}
	if !c.UseMaterialFilename || c.Scale != 1 || c.LogFormat != "pretty" {
		t.Error("defaults should survive", c)
	}
	if c.LODMask() != 0x05 {
		t.Error("LODMask", c.LODMask())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("explicit path must exist")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil || c.LODMask() != 1 {
		t.Error("default", err, c.LODMask())
	}
	c.LODs = []int{8}
	if c.Validate() == nil {
		t.Error("lod range")
	}
	c = Default()
	c.Workers = 0
	if c.Validate() == nil {
		t.Error("workers")
	}
	c = Default()
	c.LODs = nil
	if c.LODMask() != 1 {
		t.Error("empty lods")
	}
}

func TestSaveLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "config.yaml")
	c := Default()
	c.GameRoot = "/game"
	c.LODs = []int{1, 7}
	if err := c.Save(p); err != nil {
		t.Fatal(err)
	}
	c2, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if c2.GameRoot != "/game" || c2.LODMask() != 0x82 {
		t.Error("round trip", c2)
	}
}
