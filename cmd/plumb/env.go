package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/plumbvcs/plumb/pkg/object"
)

// cmdEnv resolves the repository directory and opens its pieces lazily,
// after cobra has parsed the persistent flags.
type cmdEnv struct {
	dir *string
}

func (e *cmdEnv) root() string { return *e.dir }

// openStore opens the object store under the repository directory, with a
// read cache in front.
func (e *cmdEnv) openStore() (object.Store, error) {
	root := e.root()
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("repository %q: %w (run 'plumb init')", root, err)
	}
	fs := object.NewFileStore(root)
	cached, err := object.NewCachedStore(fs, object.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	log.Debug("opened object store", "dir", root)
	return cached, nil
}

func (e *cmdEnv) refs() *refStore {
	return &refStore{root: e.root()}
}

func (e *cmdEnv) config() (*config, error) {
	return loadConfig(filepath.Join(e.root(), "config.toml"))
}

// resolveID turns a full hex id, a unique prefix, or a ref name into an
// object id.
func (e *cmdEnv) resolveID(s object.Store, arg string) (object.ID, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return object.ZeroID, fmt.Errorf("empty revision: %w", object.ErrInvalidArgument)
	}

	if len(arg) == object.HexSize {
		if id, err := object.ParseID(arg); err == nil {
			return id, nil
		}
	}

	if id, err := e.refs().ResolveRef(arg); err == nil {
		return id, nil
	}

	p, err := object.ParsePrefix(arg)
	if err != nil {
		return object.ZeroID, fmt.Errorf("revision %q: %w", arg, err)
	}
	return s.ResolvePrefix(p)
}
