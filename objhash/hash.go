// Package objhash implements the BLAKE3 content identifiers shared by every
// stored object kind (tree, file, symlink, conflict).
package objhash

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/zeebo/blake3"
)

// DigestSize is the width in bytes of a Hash.
const DigestSize = 32

// Hash is a BLAKE3 content identifier.
type Hash [DigestSize]byte

// Zero is the Hash with all bytes zero; used as a sentinel for "no id".
var Zero Hash

// IsZero reports whether h is the Zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// String renders h as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// FromHex parses a hex string into a Hash. Malformed input decodes to the
// Zero hash, mirroring the lenient parsing the store's id round-trips rely
// on elsewhere.
func FromHex(s string) Hash {
	var h Hash
	b, _ := hex.DecodeString(s)
	copy(h[:], b)
	return h
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	*h = FromHex(string(text))
	return nil
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*h = FromHex(s)
	return nil
}

// Sum computes the content identifier of data.
func Sum(data []byte) Hash {
	return Hash(blake3.Sum256(data))
}

// Sort sorts a slice of Hash in increasing byte order.
func Sort(hs []Hash) {
	sort.Sort(Slice(hs))
}

// Slice attaches sort.Interface to []Hash.
type Slice []Hash

func (s Slice) Len() int           { return len(s) }
func (s Slice) Less(i, j int) bool { return bytes.Compare(s[i][:], s[j][:]) < 0 }
func (s Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
