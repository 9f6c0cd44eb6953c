// Package transcript implements the Fiat-Shamir transcript used to derive
// the IPA/multiproof's non-interactive challenges: a single running
// SHA-256 hasher into which every message and domain-separation label is
// written, finalized (and reset) only when a challenge is drawn.
package transcript

import (
	"crypto/sha256"
	"hash"

	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
)

// Transcript accumulates protocol messages and derives challenges from
// them. It is not safe for concurrent use, matching the single-writer
// contract of the trie it serves.
type Transcript struct {
	h hash.Hash
}

// New creates a transcript seeded with a domain-separation label: the
// label is written into the hasher immediately, matching
// Sha256::new_with_prefix(label) in the reference transcript.
func New(label string) *Transcript {
	t := &Transcript{h: sha256.New()}
	t.h.Write([]byte(label))
	return t
}

// absorb writes label then data into the running hasher. It never
// finalizes or re-hashes prior state; everything written since the last
// ChallengeScalar call (or since New) remains part of one ongoing digest.
func (t *Transcript) absorb(label string, data []byte) {
	t.h.Write([]byte(label))
	t.h.Write(data)
}

// DomainSep adds an additional domain-separation label mid-protocol, e.g.
// to distinguish the multiproof round from the inner IPA round.
func (t *Transcript) DomainSep(label string) {
	t.absorb(label, nil)
}

// AppendPoint absorbs a group element's canonical encoding under label.
func (t *Transcript) AppendPoint(label string, p bandersnatch.Point) {
	enc := p.Encode()
	t.absorb(label, enc[:])
}

// AppendScalar absorbs a field element's little-endian encoding under
// label.
func (t *Transcript) AppendScalar(label string, s bandersnatch.Fr) {
	le := s.BytesLE()
	t.absorb(label, le[:])
}

// ChallengeScalar derives a field-element challenge from everything
// written so far: it writes label (domain-separating the challenge
// itself), takes the digest, resets the hasher to a fresh empty state, and
// folds the derived challenge back in under the same label so the next
// absorbed message continues from a transcript that already commits to
// this challenge.
func (t *Transcript) ChallengeScalar(label string) bandersnatch.Fr {
	t.h.Write([]byte(label))
	digest := t.h.Sum(nil)

	challenge := bandersnatch.FrFromLEBytesModOrder(digest)

	t.h.Reset()
	t.AppendScalar(label, challenge)

	return challenge
}
