// Package store implements the concrete, local, content-addressed Store
// collaborator declared by the tree package: on-disk blob I/O
// with BLAKE3 hashing and zstd compression, fronted by an in-process
// ristretto hot-object cache.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/antgroup/treestore/internal/xlog"
	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

const (
	treeKind     = "tree"
	fileKind     = "file"
	conflictKind = "conflict"
)

// defaultCacheMaxCost matches the teacher's own hardcoded
// backend.Database.metaLRU sizing (odb.go), used whenever Options leaves
// CacheMaxCost unset.
const defaultCacheMaxCost = 100_000

// Options configures a FileStore. The zero value is a valid Options and
// selects the same defaults Open used before it took tuning knobs.
type Options struct {
	// CacheMaxCost bounds the ristretto hot-object cache, in entry-cost
	// units; <= 0 uses defaultCacheMaxCost.
	CacheMaxCost int64
	// Compression selects the on-disk blob compression method: "zstd"
	// (the default, including the zero value) or "none".
	Compression string
}

// FileStore is a local, single-writer, content-addressed object store
// rooted at a directory on disk. Concurrent readers are safe without
// external coordination; FileStore guards its on-disk layout with a single
// RWMutex, matching the teacher's backend.Database.mu.
type FileStore struct {
	root        string
	mu          sync.RWMutex
	cache       *ristretto.Cache[string, any]
	compression compressMethod

	emptyTreeID treeval.TreeId
}

// Open opens (creating if necessary) a FileStore rooted at root, tuned by
// opts (the fields internal/config.StoreConfig loads from TOML).
func Open(root string, opts Options) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, treeval.NewError(treeval.StoreIo, "create store root", err)
	}
	maxCost := opts.CacheMaxCost
	if maxCost <= 0 {
		maxCost = defaultCacheMaxCost
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: defaultCacheMaxCost,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, treeval.NewError(treeval.StoreIo, "create object cache", err)
	}
	method, err := parseCompressMethod(opts.Compression)
	if err != nil {
		return nil, treeval.NewError(treeval.StoreIo, "configure store", err)
	}
	s := &FileStore{root: root, cache: cache, compression: method}
	s.emptyTreeID = objhash.Sum(encodeStoredTree(treeval.EmptyStoredTree()))
	return s, nil
}

// Close releases the store's in-process cache.
func (s *FileStore) Close() error {
	s.cache.Close()
	return nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// EmptyTreeID returns the canonical id of the tree with no entries.
func (s *FileStore) EmptyTreeID() treeval.TreeId { return s.emptyTreeID }

func (s *FileStore) objPath(kind string, id objhash.Hash) string {
	encoded := id.String()
	return filepath.Join(s.root, kind, encoded[:2], encoded[2:4], encoded)
}

func cacheKey(kind string, id objhash.Hash) string {
	return kind + ":" + id.String()
}

// putBlob writes data under kind/id if not already present; content
// addressing makes the write idempotent, so an existing file is left
// untouched rather than re-validated.
func (s *FileStore) putBlob(kind string, id objhash.Hash, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.objPath(kind, id)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.logStoreIo("create object directory", kind, id, err)
	}
	tmp, err := os.CreateTemp(dir, "incoming-*")
	if err != nil {
		return s.logStoreIo("create temp object", kind, id, err)
	}
	tmpName := tmp.Name()
	if err := writeBlob(tmp, data, s.compression); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return s.logStoreIo("write object", kind, id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return s.logStoreIo("close temp object", kind, id, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return s.logStoreIo("finalize object", kind, id, err)
	}
	return nil
}

// logStoreIo wraps err as a StoreIo Error and logs it with structured
// fields identifying the object involved, per SPEC_FULL.md's "logs
// structured fields on I/O ... paths" requirement.
func (s *FileStore) logStoreIo(message, kind string, id objhash.Hash, cause error) error {
	xlog.Errorw("store io error", xlog.Fields{
		"op": message, "kind": kind, "id": id.String(), "root": s.root, "err": cause,
	})
	return treeval.NewError(treeval.StoreIo, message, cause)
}

// getBlob reads and decompresses the blob stored under kind/id.
func (s *FileStore) getBlob(kind string, id objhash.Hash) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.objPath(kind, id)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			xlog.Warnw("object not found", xlog.Fields{"kind": kind, "id": id.String(), "root": s.root})
			return nil, treeval.NewError(treeval.NotFound, fmt.Sprintf("%s %s not found", kind, id), err)
		}
		return nil, s.logStoreIo("open object", kind, id, err)
	}
	defer f.Close()
	data, err := readBlob(f)
	if err != nil {
		xlog.Errorw("corrupt object", xlog.Fields{"kind": kind, "id": id.String(), "root": s.root, "err": err})
		return nil, treeval.NewError(treeval.Corrupt, fmt.Sprintf("decode %s %s", kind, id), err)
	}
	return data, nil
}

// ReadFile opens the file object id for path.
func (s *FileStore) ReadFile(ctx context.Context, path repopath.Path, id treeval.FileId) (io.ReadCloser, error) {
	data, err := s.getBlob(fileKind, id)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(newByteReader(data)), nil
}

// WriteFile stores data as a new file object, returning its FileId.
func (s *FileStore) WriteFile(ctx context.Context, path repopath.Path, data []byte) (treeval.FileId, error) {
	id := objhash.Sum(data)
	if err := s.putBlob(fileKind, id, data); err != nil {
		return treeval.FileId{}, err
	}
	return id, nil
}

// GetTree resolves a TreeId to its decoded StoredTree, consulting the
// ristretto cache before touching disk.
func (s *FileStore) GetTree(ctx context.Context, dir repopath.Path, id treeval.TreeId) (*treeval.StoredTree, error) {
	if id == s.emptyTreeID {
		t := treeval.EmptyStoredTree()
		return &t, nil
	}
	key := cacheKey(treeKind, id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*treeval.StoredTree), nil
	}
	raw, err := s.getBlob(treeKind, id)
	if err != nil {
		return nil, err
	}
	data, err := decodeStoredTree(raw)
	if err != nil {
		xlog.Errorw("corrupt tree object", xlog.Fields{"id": id.String(), "dir": dir.String(), "err": err})
		return nil, treeval.NewError(treeval.Corrupt, fmt.Sprintf("decode tree %s", id), err)
	}
	s.cache.Set(key, data, int64(data.Len()))
	return data, nil
}

// WriteTree stores data, returning its TreeId. The empty tree is
// recognized without touching disk.
func (s *FileStore) WriteTree(ctx context.Context, dir repopath.Path, data *treeval.StoredTree) (treeval.TreeId, error) {
	raw := encodeStoredTree(data)
	id := objhash.Sum(raw)
	if id == s.emptyTreeID {
		return id, nil
	}
	if err := s.putBlob(treeKind, id, raw); err != nil {
		return treeval.TreeId{}, err
	}
	s.cache.Set(cacheKey(treeKind, id), data, int64(data.Len()))
	return id, nil
}

// ReadConflict resolves a ConflictId to its decoded Conflict.
func (s *FileStore) ReadConflict(ctx context.Context, id treeval.ConflictId) (*treeval.Conflict, error) {
	key := cacheKey(conflictKind, id)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*treeval.Conflict), nil
	}
	raw, err := s.getBlob(conflictKind, id)
	if err != nil {
		return nil, err
	}
	c, err := decodeConflict(raw)
	if err != nil {
		xlog.Errorw("corrupt conflict object", xlog.Fields{"id": id.String(), "err": err})
		return nil, treeval.NewError(treeval.Corrupt, fmt.Sprintf("decode conflict %s", id), err)
	}
	s.cache.Set(key, c, int64(len(c.Adds)+len(c.Removes)))
	return c, nil
}

// WriteConflict stores c, returning its ConflictId. Callers are expected to
// pass an already-simplified Conflict (merge.Simplify's job, not the
// store's); WriteConflict itself performs no reduction.
func (s *FileStore) WriteConflict(ctx context.Context, c *treeval.Conflict) (treeval.ConflictId, error) {
	raw := encodeConflict(c)
	id := objhash.Sum(raw)
	if err := s.putBlob(conflictKind, id, raw); err != nil {
		return treeval.ConflictId{}, err
	}
	s.cache.Set(cacheKey(conflictKind, id), c, int64(len(c.Adds)+len(c.Removes)))
	return id, nil
}
