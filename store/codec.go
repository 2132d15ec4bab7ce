package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/antgroup/treestore/modules/streamio"
	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/treeval"
)

var blobMagic = [4]byte{'T', 'S', 0x00, 0x01}

const blobVersion uint16 = 1

type compressMethod uint16

const (
	methodStore compressMethod = 0
	methodZstd  compressMethod = 1
)

// parseCompressMethod resolves the "compression" config knob
// (internal/config.StoreConfig.Compression) into a compressMethod. The
// empty string, matching a config file that omits the key, defaults to
// zstd.
func parseCompressMethod(name string) (compressMethod, error) {
	switch name {
	case "", "zstd":
		return methodZstd, nil
	case "none":
		return methodStore, nil
	default:
		return 0, fmt.Errorf("unknown compression method %q", name)
	}
}

// writeBlob writes data to w as:
//
//	4 byte magic
//	2 byte version
//	2 byte method
//	8 byte uncompressed length
//	N bytes raw or method-compressed payload
func writeBlob(w io.Writer, data []byte, method compressMethod) error {
	if _, err := w.Write(blobMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, blobVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, method); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int64(len(data))); err != nil {
		return err
	}
	switch method {
	case methodStore:
		if _, err := w.Write(data); err != nil {
			return err
		}
		return nil
	default:
		zw := streamio.GetZstdWriter(w)
		defer streamio.PutZstdWriter(zw)
		if _, err := zw.Write(data); err != nil {
			return err
		}
		return nil
	}
}

// readBlob reverses writeBlob.
func readBlob(r io.Reader) ([]byte, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != blobMagic {
		return nil, fmt.Errorf("bad blob magic %x", magic)
	}
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	var method compressMethod
	if err := binary.Read(r, binary.BigEndian, &method); err != nil {
		return nil, err
	}
	var size int64
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return nil, err
	}

	switch method {
	case methodStore:
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		return data, nil
	case methodZstd:
		zr, err := streamio.GetZstdReader(r)
		if err != nil {
			return nil, err
		}
		defer streamio.PutZstdReader(zr)
		data := make([]byte, size)
		if _, err := io.ReadFull(zr, data); err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown compression method %d", method)
	}
}

func newByteReader(data []byte) io.Reader { return bytes.NewReader(data) }

// Tree entry binary format, one per entry, sorted by name:
//
//	4 byte kind
//	1 byte executable flag
//	4 byte name length
//	N byte name
//	32 byte hash
func encodeStoredTree(data *treeval.StoredTree) []byte {
	var buf bytes.Buffer
	for _, e := range data.Entries() {
		binary.Write(&buf, binary.BigEndian, uint32(e.Value.Kind))
		if e.Value.Executable {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		name := []byte(e.Name)
		binary.Write(&buf, binary.BigEndian, uint32(len(name)))
		buf.Write(name)
		buf.Write(idBytes(e.Value))
	}
	return buf.Bytes()
}

func idBytes(v treeval.TreeValue) []byte {
	switch v.Kind {
	case treeval.KindFile:
		h := v.FileID
		return h[:]
	case treeval.KindSymlink:
		h := v.SymlinkID
		return h[:]
	case treeval.KindTree:
		h := v.TreeID
		return h[:]
	case treeval.KindConflict:
		h := v.ConflictID
		return h[:]
	default:
		var zero objhash.Hash
		return zero[:]
	}
}

func decodeStoredTree(raw []byte) (*treeval.StoredTree, error) {
	r := bytes.NewReader(raw)
	var entries []treeval.Entry
	for r.Len() > 0 {
		var kind uint32
		if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
			return nil, err
		}
		execByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		var nameLen uint32
		if err := binary.Read(r, binary.BigEndian, &nameLen); err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, err
		}
		var id objhash.Hash
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return nil, err
		}

		var v treeval.TreeValue
		switch treeval.Kind(kind) {
		case treeval.KindFile:
			v = treeval.File(id, execByte == 1)
		case treeval.KindSymlink:
			v = treeval.Symlink(id)
		case treeval.KindTree:
			v = treeval.Tree(id)
		case treeval.KindConflict:
			v = treeval.AsConflict(id)
		default:
			return nil, fmt.Errorf("unknown tree value kind %d", kind)
		}
		entries = append(entries, treeval.Entry{Name: repopath.Component(name), Value: v})
	}
	return treeval.NewStoredTree(entries), nil
}

// Conflict binary format:
//
//	4 byte remove count, then that many entries (same shape as a tree entry
//	minus the name)
//	4 byte add count, then that many entries
func encodeConflict(c *treeval.Conflict) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(c.Removes)))
	for _, p := range c.Removes {
		encodeConflictPart(&buf, p)
	}
	binary.Write(&buf, binary.BigEndian, uint32(len(c.Adds)))
	for _, p := range c.Adds {
		encodeConflictPart(&buf, p)
	}
	return buf.Bytes()
}

func encodeConflictPart(buf *bytes.Buffer, p treeval.ConflictPart) {
	binary.Write(buf, binary.BigEndian, uint32(p.Value.Kind))
	if p.Value.Executable {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(idBytes(p.Value))
}

func decodeConflictPart(r *bytes.Reader) (treeval.ConflictPart, error) {
	var kind uint32
	if err := binary.Read(r, binary.BigEndian, &kind); err != nil {
		return treeval.ConflictPart{}, err
	}
	execByte, err := r.ReadByte()
	if err != nil {
		return treeval.ConflictPart{}, err
	}
	var id objhash.Hash
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return treeval.ConflictPart{}, err
	}
	var v treeval.TreeValue
	switch treeval.Kind(kind) {
	case treeval.KindFile:
		v = treeval.File(id, execByte == 1)
	case treeval.KindSymlink:
		v = treeval.Symlink(id)
	case treeval.KindTree:
		v = treeval.Tree(id)
	case treeval.KindConflict:
		v = treeval.AsConflict(id)
	default:
		return treeval.ConflictPart{}, fmt.Errorf("unknown conflict part kind %d", kind)
	}
	return treeval.ConflictPart{Value: v}, nil
}

func decodeConflict(raw []byte) (*treeval.Conflict, error) {
	r := bytes.NewReader(raw)
	var removeCount uint32
	if err := binary.Read(r, binary.BigEndian, &removeCount); err != nil {
		return nil, err
	}
	removes := make([]treeval.ConflictPart, 0, removeCount)
	for i := uint32(0); i < removeCount; i++ {
		p, err := decodeConflictPart(r)
		if err != nil {
			return nil, err
		}
		removes = append(removes, p)
	}
	var addCount uint32
	if err := binary.Read(r, binary.BigEndian, &addCount); err != nil {
		return nil, err
	}
	adds := make([]treeval.ConflictPart, 0, addCount)
	for i := uint32(0); i < addCount; i++ {
		p, err := decodeConflictPart(r)
		if err != nil {
			return nil, err
		}
		adds = append(adds, p)
	}
	return &treeval.Conflict{Removes: removes, Adds: adds}, nil
}
