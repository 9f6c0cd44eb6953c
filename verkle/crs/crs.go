// Package crs builds and caches the Verkle trie's common reference string:
// 256 Banderwagon generators used as the Pedersen vector-commitment basis,
// plus the auxiliary IPA generator Q.
package crs

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/morph-dev/portal-verkle-primitives/log"
	"github.com/morph-dev/portal-verkle-primitives/metrics"
	"github.com/morph-dev/portal-verkle-primitives/verkle/bandersnatch"
)

var (
	logger       = log.Default().Module("crs")
	buildTimer   = metrics.NewHistogram("verkle_crs_build_ms")
	msmSizeGauge = metrics.NewGauge("verkle_crs_last_msm_size")
)

// Width is the trie's fixed branching factor; the spec.md Non-goals rule
// out any other width.
const Width = 256

const domainSeparator = "eth_verkle_oct_2021"

// CRS holds the Pedersen commitment basis and the IPA auxiliary generator.
type CRS struct {
	Bases []bandersnatch.Point
	Q     bandersnatch.Point
}

var (
	once     sync.Once
	instance *CRS
)

// Get returns the process-wide CRS, generating it on first use.
func Get() *CRS {
	once.Do(func() {
		instance = build()
	})
	return instance
}

// build derives the 256 basis points deterministically: a single counter i
// walks 0, 1, 2, ... and, for each i, hashes the domain separator with i
// encoded as a big-endian u64. Whenever the digest decodes as a valid
// Banderwagon point, that point becomes the next basis; indices whose
// digest doesn't decode are skipped entirely (the counter is never retried
// with a second nonce), matching the reference CRS generator's single
// `for i in 0u64..` loop (spec.md §4.2).
func build() *CRS {
	timer := metrics.NewTimer(buildTimer)
	bases := make([]bandersnatch.Point, 0, Width)
	for i := uint64(0); len(bases) < Width; i++ {
		if p, ok := hashToPoint(i); ok {
			bases = append(bases, p)
		}
	}
	logger.Debug("generated CRS bases", "count", Width, "elapsed", timer.Stop())
	return &CRS{
		Bases: bases,
		Q:     bandersnatch.Generator(),
	}
}

// hashToPoint hashes domainSeparator || be64(index) and attempts to decode
// the digest as a canonical Banderwagon point encoding, reporting ok=false
// when the digest isn't a valid encoding so the caller moves on to the next
// index rather than re-hashing this one under a different nonce.
func hashToPoint(index uint64) (bandersnatch.Point, bool) {
	var idxBytes [8]byte
	binary.BigEndian.PutUint64(idxBytes[:], index)

	h := sha256.New()
	h.Write([]byte(domainSeparator))
	h.Write(idxBytes[:])
	digest := h.Sum(nil)

	var encoded [32]byte
	copy(encoded[:], digest)

	p, err := bandersnatch.Decode(encoded)
	if err != nil {
		return bandersnatch.Point{}, false
	}
	return p, true
}

// Commit computes sum(scalars[i] * Bases[i]) over the full-width vector.
// scalars must have exactly Width entries.
func (c *CRS) Commit(scalars []bandersnatch.Fr) bandersnatch.Point {
	if len(scalars) != Width {
		panic("crs: commit requires exactly Width scalars")
	}
	msmSizeGauge.Set(int64(Width))
	return bandersnatch.MSM(c.Bases, scalars)
}

// CommitSingle returns scalar * Bases[index], short-circuiting to the
// identity when scalar is zero. This is the incremental-update fast path:
// a single leaf/branch slot changing needs only one scalar multiplication
// rather than a full 256-term MSM.
func (c *CRS) CommitSingle(index int, scalar bandersnatch.Fr) bandersnatch.Point {
	if scalar.IsZero() {
		return bandersnatch.Identity()
	}
	return c.Bases[index].ScalarMul(scalar)
}

// SparseTerm is one (index, scalar) pair in a sparse commitment.
type SparseTerm struct {
	Index  int
	Scalar bandersnatch.Fr
}

// sparseDenseThreshold is the point at which a sparse update is more
// expensive than just re-running the dense Width-term MSM.
const sparseDenseThreshold = 64

// CommitSparse computes sum(term.Scalar * Bases[term.Index]) for a list of
// sparse terms, falling back to a dense commit when the list is large
// enough that the sparse path no longer pays for itself (spec.md §4.2).
func (c *CRS) CommitSparse(terms []SparseTerm) bandersnatch.Point {
	if len(terms) >= sparseDenseThreshold {
		dense := make([]bandersnatch.Fr, Width)
		for _, t := range terms {
			dense[t.Index] = t.Scalar
		}
		return c.Commit(dense)
	}
	result := bandersnatch.Identity()
	for _, t := range terms {
		if t.Scalar.IsZero() {
			continue
		}
		result = result.Add(c.Bases[t.Index].ScalarMul(t.Scalar))
	}
	return result
}
