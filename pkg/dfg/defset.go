package dfg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/vmihailenco/msgpack/v5"
)

// DefSet is a set of definitions keyed by definition index. The zero value
// is an empty set. Sets are values: use Clone before mutating a shared copy.
type DefSet struct {
	bits *bitset.BitSet
}

// NewDefSet returns a set holding the given definitions.
func NewDefSet(defs ...Definition) DefSet {
	var s DefSet
	for _, d := range defs {
		s.Add(d.Index)
	}
	return s
}

func (s DefSet) bs() *bitset.BitSet {
	if s.bits == nil {
		return &bitset.BitSet{}
	}
	return s.bits
}

// Add inserts the definition with the given index.
func (s *DefSet) Add(index int) {
	if s.bits == nil {
		s.bits = &bitset.BitSet{}
	}
	s.bits.Set(uint(index))
}

// Has reports whether the definition with the given index is in the set.
func (s DefSet) Has(index int) bool {
	return s.bits != nil && s.bits.Test(uint(index))
}

// Len returns the number of definitions in the set.
func (s DefSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Union returns s ∪ other.
func (s DefSet) Union(other DefSet) DefSet {
	return DefSet{bits: s.bs().Union(other.bs())}
}

// Difference returns s − other.
func (s DefSet) Difference(other DefSet) DefSet {
	return DefSet{bits: s.bs().Difference(other.bs())}
}

// Equal reports whether both sets hold the same definitions, regardless of
// their capacity.
func (s DefSet) Equal(other DefSet) bool {
	return s.Len() == other.Len() && s.bs().IsSuperSet(other.bs())
}

// IsSubset reports whether every member of s is in other.
func (s DefSet) IsSubset(other DefSet) bool {
	return other.bs().IsSuperSet(s.bs())
}

// Clone returns an independent copy.
func (s DefSet) Clone() DefSet {
	if s.bits == nil {
		return DefSet{}
	}
	return DefSet{bits: s.bits.Clone()}
}

// Indices returns member indices in ascending order.
func (s DefSet) Indices() []int {
	indices := make([]int, 0, s.Len())
	if s.bits == nil {
		return indices
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		indices = append(indices, int(i))
	}
	return indices
}

// IDs returns member ids ("D1", "D2", ...) in definition order.
func (s DefSet) IDs() []string {
	indices := s.Indices()
	ids := make([]string, len(indices))
	for i, idx := range indices {
		ids[i] = definitionID(idx)
	}
	return ids
}

// String formats the set as "{D1, D3}", or "∅" when empty.
func (s DefSet) String() string {
	if s.Len() == 0 {
		return "∅"
	}
	return "{" + strings.Join(s.IDs(), ", ") + "}"
}

// MarshalJSON encodes the set as a list of ids.
func (s DefSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes a list of ids.
func (s *DefSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = DefSet{}
	for _, id := range ids {
		idx, err := parseDefinitionID(id)
		if err != nil {
			return err
		}
		s.Add(idx)
	}
	return nil
}

// EncodeMsgpack encodes the set as a list of indices.
func (s DefSet) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(s.Indices())
}

// DecodeMsgpack decodes a list of indices.
func (s *DefSet) DecodeMsgpack(dec *msgpack.Decoder) error {
	var indices []int
	if err := dec.Decode(&indices); err != nil {
		return err
	}
	*s = DefSet{}
	for _, idx := range indices {
		s.Add(idx)
	}
	return nil
}

func parseDefinitionID(id string) (int, error) {
	if !strings.HasPrefix(id, "D") {
		return 0, fmt.Errorf("invalid definition id %q", id)
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid definition id %q", id)
	}
	return n - 1, nil
}
