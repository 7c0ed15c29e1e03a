package object

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Store is the content-addressed storage capability the core depends on.
// Implementations must be append-only and safe for concurrent reads.
type Store interface {
	// Get retrieves an object's type and body. Absent ids report ErrNotFound.
	Get(id ID) (Type, []byte, error)
	// Put stores an object and returns its content id. Storing the same
	// content twice is a no-op returning the same id.
	Put(typ Type, body []byte) (ID, error)
	// Has reports whether the store contains the object.
	Has(id ID) bool
	// ResolvePrefix expands an abbreviated id. It reports ErrNotFound when
	// nothing matches and ErrAmbiguous when more than one object does.
	ResolvePrefix(p Prefix) (ID, error)
}

// FileStore is a loose-object Store with a 2-character fan-out layout:
// <root>/objects/ab/cdef0123... Each object is a zlib-deflated
// "type size\0body" envelope, so the files are readable by stock Git
// tooling.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at the given directory. The
// objects/ subdirectory is created lazily on first write.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) objectPath(id ID) string {
	hex := id.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given id.
func (s *FileStore) Has(id ID) bool {
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// Put compresses and stores an object, returning its content id. Writes
// are atomic: data goes to a temp file which is then renamed into place.
func (s *FileStore) Put(typ Type, body []byte) (ID, error) {
	id := HashObject(typ, body)

	// Fast path: already exists.
	if s.Has(id) {
		return id, nil
	}

	hex := id.String()
	dir := filepath.Join(s.root, "objects", hex[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ZeroID, fmt.Errorf("object put mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ZeroID, fmt.Errorf("object put tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	zw := zlib.NewWriter(tmp)
	fmt.Fprintf(zw, "%s %d\x00", typ, len(body))
	if _, err := zw.Write(body); err != nil {
		zw.Close()
		tmp.Close()
		os.Remove(tmpName)
		return ZeroID, fmt.Errorf("object put: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return ZeroID, fmt.Errorf("object put compress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ZeroID, fmt.Errorf("object put close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(id)); err != nil {
		os.Remove(tmpName)
		return ZeroID, fmt.Errorf("object put rename: %w", err)
	}

	return id, nil
}

// Get retrieves an object by id, returning its type and body.
func (s *FileStore) Get(id ID) (Type, []byte, error) {
	f, err := os.Open(s.objectPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object %s: %w", id, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object get %s: %w", id, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: bad zlib stream: %w", id, ErrCorrupt)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("object %s: decompress: %w", id, ErrCorrupt)
	}

	typ, body, err := parseEnvelope(id, raw)
	if err != nil {
		return "", nil, err
	}
	return typ, body, nil
}

// parseEnvelope splits "type size\0body" and validates the declared size.
func parseEnvelope(id ID, raw []byte) (Type, []byte, error) {
	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("object %s: envelope missing NUL: %w", id, ErrCorrupt)
	}
	header := string(raw[:nul])
	body := raw[nul+1:]

	typStr, sizeStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("object %s: bad envelope header %q: %w", id, header, ErrCorrupt)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size != len(body) {
		return "", nil, fmt.Errorf("object %s: envelope size mismatch (header=%q, actual=%d): %w", id, sizeStr, len(body), ErrCorrupt)
	}
	return Type(typStr), body, nil
}

// ResolvePrefix scans the fan-out directories for objects matching the
// abbreviated id.
func (s *FileStore) ResolvePrefix(p Prefix) (ID, error) {
	if p.Len() == HexSize {
		id, err := ParseID(p.String())
		if err != nil {
			return ZeroID, err
		}
		if !s.Has(id) {
			return ZeroID, fmt.Errorf("object %s: %w", p, ErrNotFound)
		}
		return id, nil
	}

	objectsDir := filepath.Join(s.root, "objects")
	var fanouts []string
	if p.Len() >= 2 {
		fanouts = []string{p.String()[:2]}
	} else {
		dirs, err := os.ReadDir(objectsDir)
		if err != nil {
			if os.IsNotExist(err) {
				return ZeroID, fmt.Errorf("object %s: %w", p, ErrNotFound)
			}
			return ZeroID, fmt.Errorf("resolve prefix %s: %w", p, err)
		}
		for _, d := range dirs {
			if d.IsDir() && strings.HasPrefix(d.Name(), p.String()) {
				fanouts = append(fanouts, d.Name())
			}
		}
	}

	var found ID
	matches := 0
	for _, fan := range fanouts {
		names, err := os.ReadDir(filepath.Join(objectsDir, fan))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return ZeroID, fmt.Errorf("resolve prefix %s: %w", p, err)
		}
		for _, name := range names {
			hex := fan + name.Name()
			if len(hex) != HexSize || !strings.HasPrefix(hex, p.String()) {
				continue
			}
			id, err := ParseID(hex)
			if err != nil {
				continue
			}
			matches++
			if matches > 1 {
				return ZeroID, fmt.Errorf("object prefix %s matches multiple objects: %w", p, ErrAmbiguous)
			}
			found = id
		}
	}

	if matches == 0 {
		return ZeroID, fmt.Errorf("object %s: %w", p, ErrNotFound)
	}
	return found, nil
}

// ---------------------------------------------------------------------------
// Typed helpers
// ---------------------------------------------------------------------------

// GetBlob reads and deserializes a Blob, reporting ErrWrongType when the
// id resolves to a different object kind.
func GetBlob(s Store, id ID) (*Blob, error) {
	body, err := getTyped(s, id, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(body)
}

// GetTree reads and deserializes a Tree.
func GetTree(s Store, id ID) (*Tree, error) {
	body, err := getTyped(s, id, TypeTree)
	if err != nil {
		return nil, err
	}
	return UnmarshalTree(body)
}

// GetCommit reads and deserializes a Commit.
func GetCommit(s Store, id ID) (*Commit, error) {
	body, err := getTyped(s, id, TypeCommit)
	if err != nil {
		return nil, err
	}
	return UnmarshalCommit(body)
}

func getTyped(s Store, id ID, want Type) ([]byte, error) {
	typ, body, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if typ != want {
		return nil, fmt.Errorf("object %s: got %q, want %q: %w", id, typ, want, ErrWrongType)
	}
	return body, nil
}

// PutBlob serializes and stores a Blob.
func PutBlob(s Store, b *Blob) (ID, error) {
	return s.Put(TypeBlob, MarshalBlob(b))
}

// PutTree serializes and stores a Tree.
func PutTree(s Store, t *Tree) (ID, error) {
	return s.Put(TypeTree, MarshalTree(t))
}

// PutCommit serializes and stores a Commit.
func PutCommit(s Store, c *Commit) (ID, error) {
	return s.Put(TypeCommit, MarshalCommit(c))
}
