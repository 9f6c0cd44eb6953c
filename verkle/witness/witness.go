// Package witness decodes an ExecutionWitness payload — the per-block
// state diff and accompanying Verkle proof a stateless client receives
// over the wire (spec.md §6).
package witness

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
)

// SuffixStateDiff is a single suffix's before/after value within a stem
// group. Either value may be nil, meaning "absent" (no value stored, as
// opposed to an explicit zero value).
type SuffixStateDiff struct {
	Suffix       byte
	CurrentValue *key.TrieValue
	NewValue     *key.TrieValue
}

// IsNoOp reports whether this diff changes nothing: both values absent,
// or both present and byte-equal.
func (d SuffixStateDiff) IsNoOp() bool {
	if d.CurrentValue == nil && d.NewValue == nil {
		return true
	}
	if d.CurrentValue == nil || d.NewValue == nil {
		return false
	}
	return bytes.Equal(d.CurrentValue[:], d.NewValue[:])
}

// StemStateDiff groups the suffix diffs sharing a common stem.
type StemStateDiff struct {
	Stem        key.Stem
	SuffixDiffs []SuffixStateDiff
}

// IsNoOp reports whether every suffix diff in this stem group is a no-op.
func (s StemStateDiff) IsNoOp() bool {
	for _, d := range s.SuffixDiffs {
		if !d.IsNoOp() {
			return false
		}
	}
	return true
}

// ExecutionWitness is the decoded wire payload: the state diff plus the
// raw proof bytes, which are kept as given; nothing in this module parses
// their cryptographic structure.
type ExecutionWitness struct {
	StateDiff []StemStateDiff
	Proof     []byte
}

type jsonSuffixDiff struct {
	Suffix       int             `json:"suffix"`
	CurrentValue *hexutil.Bytes  `json:"currentValue,omitempty"`
	NewValue     *hexutil.Bytes  `json:"newValue,omitempty"`
}

type jsonStemDiff struct {
	Stem        hexutil.Bytes    `json:"stem"`
	SuffixDiffs []jsonSuffixDiff `json:"suffixDiffs"`
}

type jsonExecutionWitness struct {
	StateDiff []jsonStemDiff `json:"stateDiff"`
	Proof     hexutil.Bytes  `json:"verkleProof"`
}

// fieldAliases maps a legacy snake_case key to its canonical camelCase
// name, so older producers using the pre-camelCase schema still decode
// (spec.md §9 flags the looser legacy variant; this keeps it readable
// without relaxing the strict decoder below).
var fieldAliases = map[string]string{
	"state_diff":   "stateDiff",
	"suffix_diffs": "suffixDiffs",
	"current_value": "currentValue",
	"new_value":     "newValue",
	"verkle_proof":  "verkleProof",
}

// canonicalize rewrites any snake_case keys found (at any nesting depth)
// to their camelCase equivalents, so the strict decoder below only ever
// has to recognize one spelling.
func canonicalize(raw json.RawMessage) (json.RawMessage, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	renamed := canonicalizeValue(generic)
	return json.Marshal(renamed)
}

func canonicalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			name := k
			if alias, ok := fieldAliases[k]; ok {
				name = alias
			}
			out[name] = canonicalizeValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = canonicalizeValue(val)
		}
		return out
	default:
		return v
	}
}

// Decode parses an ExecutionWitness from JSON, accepting either the
// camelCase or legacy snake_case field spellings but rejecting any field
// it does not recognize once canonicalized (spec.md §9's stricter schema
// supplement: json.Decoder.DisallowUnknownFields()).
func Decode(data []byte) (*ExecutionWitness, error) {
	canonical, err := canonicalize(data)
	if err != nil {
		return nil, fmt.Errorf("witness: invalid JSON: %w", err)
	}

	var raw jsonExecutionWitness
	dec := json.NewDecoder(bytes.NewReader(canonical))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("witness: decode: %w", err)
	}

	out := &ExecutionWitness{Proof: raw.Proof}
	for _, sd := range raw.StateDiff {
		var stem key.Stem
		if len(sd.Stem) != key.StemSize {
			return nil, fmt.Errorf("witness: stem must be %d bytes, got %d", key.StemSize, len(sd.Stem))
		}
		copy(stem[:], sd.Stem)

		diffs := make([]SuffixStateDiff, 0, len(sd.SuffixDiffs))
		for _, d := range sd.SuffixDiffs {
			if d.Suffix < 0 || d.Suffix > 255 {
				return nil, fmt.Errorf("witness: suffix %d out of byte range", d.Suffix)
			}
			sdiff := SuffixStateDiff{Suffix: byte(d.Suffix)}
			if v, err := toTrieValue(d.CurrentValue); err != nil {
				return nil, err
			} else {
				sdiff.CurrentValue = v
			}
			if v, err := toTrieValue(d.NewValue); err != nil {
				return nil, err
			} else {
				sdiff.NewValue = v
			}
			diffs = append(diffs, sdiff)
		}
		out.StateDiff = append(out.StateDiff, StemStateDiff{Stem: stem, SuffixDiffs: diffs})
	}
	return out, nil
}

func toTrieValue(b *hexutil.Bytes) (*key.TrieValue, error) {
	if b == nil {
		return nil, nil
	}
	if len(*b) != key.TrieValueSize {
		return nil, fmt.Errorf("witness: value must be %d bytes, got %d", key.TrieValueSize, len(*b))
	}
	var v key.TrieValue
	copy(v[:], *b)
	return &v, nil
}
