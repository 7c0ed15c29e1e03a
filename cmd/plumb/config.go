package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/plumbvcs/plumb/pkg/merge"
)

// config is the per-repository configuration, read from config.toml in
// the repository directory. Every section is optional.
type config struct {
	User struct {
		Name  string `toml:"name"`
		Email string `toml:"email"`
	} `toml:"user"`
	Merge struct {
		Automerge       string `toml:"automerge"`
		DetectRenames   bool   `toml:"detect_renames"`
		RenameThreshold int    `toml:"rename_threshold"`
		FastForward     string `toml:"fast_forward"`
	} `toml:"merge"`
	Signing struct {
		Key string `toml:"key"`
	} `toml:"signing"`
}

func loadConfig(path string) (*config, error) {
	var cfg config
	cfg.Merge.DetectRenames = true

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// mergeOptions maps the [merge] section onto engine options. Flags passed
// on the command line override it at the call sites.
func (c *config) mergeOptions() (merge.Options, error) {
	opts := merge.Options{
		DetectRenames:   c.Merge.DetectRenames,
		RenameThreshold: c.Merge.RenameThreshold,
	}

	switch c.Merge.Automerge {
	case "", "normal":
		opts.Automerge = merge.AutomergeNormal
	case "none":
		opts.Automerge = merge.AutomergeNone
	case "ours":
		opts.Automerge = merge.AutomergeFavorOurs
	case "theirs":
		opts.Automerge = merge.AutomergeFavorTheirs
	default:
		return opts, fmt.Errorf("config: unknown merge.automerge %q", c.Merge.Automerge)
	}

	switch c.Merge.FastForward {
	case "", "allowed":
		opts.FastForward = merge.FastForwardAllowed
	case "only":
		opts.FastForward = merge.FastForwardOnly
	case "never":
		opts.FastForward = merge.NoFastForward
	default:
		return opts, fmt.Errorf("config: unknown merge.fast_forward %q", c.Merge.FastForward)
	}

	return opts, nil
}
