package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/heatmap"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Web UI
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// Input columns
	ModelColumn   string `mapstructure:"model_column" yaml:"model_column"`
	WorksetColumn string `mapstructure:"workset_column" yaml:"workset_column"`
	StarPrefix    string `mapstructure:"star_prefix" yaml:"star_prefix"`
	XLSXSheet     string `mapstructure:"xlsx_sheet" yaml:"xlsx_sheet"`
	MaxCells      int    `mapstructure:"max_cells" yaml:"max_cells"`

	// Canvas sizing (inches) and raster resolution
	CellSize  float64 `mapstructure:"cell_size" yaml:"cell_size"`
	MaxWidth  float64 `mapstructure:"max_width" yaml:"max_width"`
	MaxHeight float64 `mapstructure:"max_height" yaml:"max_height"`
	DPI       float64 `mapstructure:"dpi" yaml:"dpi"`
}

// DatasetOptions maps the configuration onto one pipeline pass.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	if c.ModelColumn != "" {
		opt.Columns.Model = c.ModelColumn
	}
	if c.WorksetColumn != "" {
		opt.Columns.Workset = c.WorksetColumn
	}
	if c.StarPrefix != "" {
		opt.StarPrefix = c.StarPrefix
	}
	opt.Sheet = c.XLSXSheet
	if c.MaxCells > 0 {
		opt.MaxCells = c.MaxCells
	}
	if c.CellSize > 0 && c.MaxWidth > 0 && c.MaxHeight > 0 {
		opt.Sizer = heatmap.Sizer{CellSize: c.CellSize, MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
	}
	return opt
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".worksetmap"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.worksetmap/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("WORKSETMAP")
	v.AutomaticEnv()

	v.SetDefault("addr", ":8501")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("model_column", dataset.DefaultModelColumn)
	v.SetDefault("workset_column", dataset.DefaultWorksetColumn)
	v.SetDefault("star_prefix", heatmap.DefaultStarPrefix)
	v.SetDefault("xlsx_sheet", "")
	v.SetDefault("max_cells", dataset.DefaultMaxCells)
	sz := heatmap.DefaultSizer()
	v.SetDefault("cell_size", sz.CellSize)
	v.SetDefault("max_width", sz.MaxWidth)
	v.SetDefault("max_height", sz.MaxHeight)
	v.SetDefault("dpi", 100.0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		// a missing file is fine (config set creates it); an unreadable one is not
		if _, err := os.Stat(cfgFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
