// Package config loads converter settings from a YAML file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const MaxLOD = 7

type Config struct {
	CarFolder string `yaml:"car_folder"`
	GameRoot  string `yaml:"game_root"`
	// LODs lists the levels of detail to import, 0 to 7.
	LODs                []int   `yaml:"lods"`
	Materials           bool    `yaml:"materials"`
	UseMaterialFilename bool    `yaml:"use_material_filename"`
	Workers             int     `yaml:"workers"`
	Output              string  `yaml:"output"`
	Scale               float32 `yaml:"scale"`
	TextureScale        float64 `yaml:"texture_scale"`
	TextureLimit        int     `yaml:"texture_limit"`
	EmbedDDS            bool    `yaml:"embed_dds"`
	LogLevel            string  `yaml:"log_level"`
	LogFormat           string  `yaml:"log_format"`
	ServerAddress       string  `yaml:"server_address"`
}

func Default() *Config {
	return &Config{
		LODs:                []int{0},
		Materials:           true,
		UseMaterialFilename: true,
		Workers:             4,
		Scale:               1,
		TextureScale:        1,
		EmbedDDS:            true,
		LogLevel:            "info",
		LogFormat:           "pretty",
		ServerAddress:       "127.0.0.1:8080",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/modelbinconv/config.yaml or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "modelbinconv", "config.yaml")
}

// Load reads path over the defaults. A missing file at the default path is
// not an error.
func Load(path string) (*Config, error) {
	conf := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return conf, nil
	}
	r, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return conf, nil
	} else if err != nil {
		return nil, err
	}
	defer r.Close()
	if err := yaml.NewDecoder(r).Decode(conf); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	for _, l := range c.LODs {
		if l < 0 || l > MaxLOD {
			return errors.Errorf("lod %d out of range 0..%d", l, MaxLOD)
		}
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Scale == 0 {
		return errors.New("scale must not be 0")
	}
	return nil
}

// LODMask converts the LOD list to a bit mask. An empty list selects LOD0.
func (c *Config) LODMask() uint16 {
	if len(c.LODs) == 0 {
		return 1
	}
	var mask uint16
	for _, l := range c.LODs {
		if l >= 0 && l <= MaxLOD {
			mask |= 1 << l
		}
	}
	return mask
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
