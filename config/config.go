package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jobala/vmsim/storage/disk"
)

type Config struct {
	Frames         int    `json:"frames"`
	PageSize       int    `json:"page_size"`
	Tasks          int    `json:"tasks"`
	PagesPerTask   int    `json:"pages_per_task"`
	References     int    `json:"references"`
	SwapfilePath   string `json:"swapfile_path"`
	DumpPath       string `json:"dump_path"`
	LogLevel       string `json:"log_level"`
	ReferenceSweep int    `json:"reference_sweep"`
}

func Default() *Config {
	return &Config{
		Frames:         8,
		PageSize:       disk.DEFAULT_PAGE_SIZE,
		Tasks:          2,
		PagesPerTask:   8,
		References:     64,
		SwapfilePath:   "vmsim.swap",
		LogLevel:       "INFO",
		ReferenceSweep: 8,
	}
}

// Load reads a JSON config. Fields missing from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Frames <= 0 {
		errs = append(errs, fmt.Errorf("frames must be positive, got %d", c.Frames))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.Tasks <= 0 {
		errs = append(errs, fmt.Errorf("tasks must be positive, got %d", c.Tasks))
	}
	if c.PagesPerTask <= 0 {
		errs = append(errs, fmt.Errorf("pages_per_task must be positive, got %d", c.PagesPerTask))
	}
	if c.References < 0 {
		errs = append(errs, fmt.Errorf("references must not be negative, got %d", c.References))
	}
	if c.ReferenceSweep < 0 {
		errs = append(errs, fmt.Errorf("reference_sweep must not be negative, got %d", c.ReferenceSweep))
	}
	if c.SwapfilePath == "" {
		errs = append(errs, errors.New("swapfile_path is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
