// Package block applies a decoded execution witness's state diff to a
// trie, including the EIP-2935 history-contract override as an explicit
// caller-supplied input rather than a hard-coded special case (spec.md
// §9 REDESIGN FLAG; supplemented from the original Rust workspace).
package block

import (
	"github.com/morph-dev/portal-verkle-primitives/log"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
	"github.com/morph-dev/portal-verkle-primitives/verkle/trie"
	"github.com/morph-dev/portal-verkle-primitives/verkle/witness"
)

var logger = log.Default().Module("block")

// StemStateWrite is one fully-resolved (key, new value) write, the shape
// both a decoded witness diff and a caller-supplied override reduce to
// before being applied to the trie.
type StemStateWrite struct {
	Key   key.TrieKey
	Value key.TrieValue
}

// ApplyBlock writes every entry of diff that sets a new value into t
// (no-op entries and entries with a nil NewValue are skipped), then applies
// overrides on top. Overrides let a caller supply out-of-band writes —
// such as the EIP-2935 block-hash history contract's implicit update,
// which the execution spec applies without it appearing in a normal
// account/storage state diff — without this package special-casing any
// particular contract address.
func ApplyBlock(t *trie.VerkleTrie, diff *witness.ExecutionWitness, overrides ...StemStateWrite) {
	applied := 0
	skipped := 0
	for _, stemDiff := range diff.StateDiff {
		for _, suffixDiff := range stemDiff.SuffixDiffs {
			if suffixDiff.IsNoOp() {
				skipped++
				continue
			}
			if suffixDiff.NewValue == nil {
				logger.Warn("suffix diff clears a value; leaving trie slot untouched",
					"stem", stemDiff.Stem, "suffix", suffixDiff.Suffix)
				continue
			}
			k := key.NewTrieKey(stemDiff.Stem, suffixDiff.Suffix)
			t.Insert(k, *suffixDiff.NewValue)
			applied++
		}
	}
	if skipped > 0 {
		logger.Debug("skipped no-op suffix diffs", "count", skipped)
	}

	for _, o := range overrides {
		t.Insert(o.Key, o.Value)
		applied++
	}

	logger.Debug("applied block state diff", "writes", applied)
}
