// Package encoding turns raw symptom/demographic records into the fixed-width
// numeric feature matrices consumed by the classifiers.
//
// Two encoders are provided: SparseMaker produces the basic layout
// [gender, race, age, presence...] and NLICESparseMaker the extended layout
// with an eight-column block per symptom (presence plus the seven NLICE
// sub-attributes). Column layout is part of the contract; downstream
// consumers address sub-ranges by arithmetic offset.
package encoding

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/aimedlab/symdx/pkg/errors"
)

// Vocabulary is the ordered mapping from symptom name to a stable column
// index. Every symptom appearing in any record must exist in it.
type Vocabulary struct {
	Names []string       // index -> name
	Index map[string]int // name -> index
}

// NewVocabulary builds a vocabulary from an ordered name list. The position
// of each name defines its encoded column.
func NewVocabulary(names []string) (*Vocabulary, error) {
	if len(names) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyVocabulary)
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, errors.NewValueError("NewVocabulary", "duplicate symptom name: "+name)
		}
		index[name] = i
	}

	return &Vocabulary{Names: append([]string(nil), names...), Index: index}, nil
}

// LoadVocabulary reads a symptom database JSON file (an object keyed by
// symptom name) and assigns indices in sorted key order, so the same file
// always yields the same column layout.
func LoadVocabulary(path string) (*Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading symptom db %s", path)
	}

	var db map[string]json.RawMessage
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, errors.Wrapf(err, "parsing symptom db %s", path)
	}

	names := make([]string, 0, len(db))
	for name := range db {
		names = append(names, name)
	}
	sort.Strings(names)

	return NewVocabulary(names)
}

// Len returns the number of symptoms in the vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.Names)
}

// Lookup returns the column index of a symptom name.
func (v *Vocabulary) Lookup(name string) (int, bool) {
	idx, ok := v.Index[name]
	return idx, ok
}
