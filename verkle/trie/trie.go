// Package trie implements the Verkle trie itself: insertion, lookup, and
// path traversal over the incrementally-committed branch/leaf nodes in
// package node (spec.md §4.8).
package trie

import (
	"fmt"
	"strings"

	"github.com/morph-dev/portal-verkle-primitives/metrics"
	"github.com/morph-dev/portal-verkle-primitives/verkle/key"
	"github.com/morph-dev/portal-verkle-primitives/verkle/node"
)

var (
	insertCounter  = metrics.NewCounter("verkle_trie_inserts_total")
	insertDuration = metrics.NewHistogram("verkle_trie_insert_ms")
)

// MaxDepth is the deepest a branch chain can go before exhausting a
// 31-byte stem; two distinct stems must diverge at or before this depth.
const MaxDepth = key.StemSize

// UnexpectedStem is returned when a lookup finds a leaf whose stem does
// not match the requested key's stem.
type UnexpectedStem struct {
	Expected key.Stem
	Actual   key.Stem
}

func (e *UnexpectedStem) Error() string {
	return fmt.Sprintf("trie: unexpected stem: expected %x, found %x", e.Expected, e.Actual)
}

// NodeNotFound is returned by path traversal when it reaches an empty
// slot before resolving to a leaf.
type NodeNotFound struct {
	Stem  key.Stem
	Depth int
}

func (e *NodeNotFound) Error() string {
	return fmt.Sprintf("trie: no node for stem %x at depth %d", e.Stem, e.Depth)
}

// VerkleTrie is a single-writer, in-memory Verkle trie. Concurrent
// mutation of one trie is out of scope (spec.md Non-goals); callers
// synchronize externally if needed.
type VerkleTrie struct {
	root *node.BranchNode
}

// New creates an empty trie.
func New() *VerkleTrie {
	return &VerkleTrie{root: node.NewBranchNode(0)}
}

// Root returns the trie's root branch node.
func (t *VerkleTrie) Root() *node.BranchNode {
	return t.root
}

// Insert writes value at k, creating or splitting branches as needed.
func (t *VerkleTrie) Insert(k key.TrieKey, value key.TrieValue) {
	timer := metrics.NewTimer(insertDuration)
	defer func() {
		timer.Stop()
		insertCounter.Inc()
	}()

	stem := k.Stem()
	suffix := k.Suffix()
	t.root.SetChild(stem[0], insert(t.root.Children[stem[0]], 1, stem, suffix, value))
}

// Update is an alias for Insert: this trie has no separate creation vs.
// mutation path, matching spec.md's description of a single write
// operation.
func (t *VerkleTrie) Update(k key.TrieKey, value key.TrieValue) {
	t.Insert(k, value)
}

func insert(n node.Node, depth int, stem key.Stem, suffix byte, value key.TrieValue) node.Node {
	switch c := n.(type) {
	case node.Empty:
		leaf := node.NewLeafNode(stem)
		leaf.Set(suffix, value)
		return leaf

	case *node.LeafNode:
		if c.Stem == stem {
			c.Set(suffix, value)
			return c
		}
		return split(depth, c.Stem, c, stem, suffix, value)

	case *node.BranchNode:
		idx := stem[depth]
		child := insert(c.Children[idx], depth+1, stem, suffix, value)
		c.SetChild(idx, child)
		return c

	default:
		panic(fmt.Sprintf("trie: unknown node type %T", n))
	}
}

// split replaces a leaf at depth whose stem collided with a new
// insertion's stem with a chain of branch nodes, descending one byte at a
// time until the two stems diverge. This generalizes the binary trie's
// single-bit branch split to this trie's byte-indexed, 256-wide branches.
func split(depth int, stemA key.Stem, leafA *node.LeafNode, stemB key.Stem, suffixB byte, valueB key.TrieValue) node.Node {
	if depth >= MaxDepth {
		panic("trie: distinct stems must diverge within MaxDepth bytes")
	}
	branch := node.NewBranchNode(depth)
	if stemA[depth] == stemB[depth] {
		child := split(depth+1, stemA, leafA, stemB, suffixB, valueB)
		branch.SetChild(stemA[depth], child)
		return branch
	}
	branch.SetChild(stemA[depth], leafA)
	leafB := node.NewLeafNode(stemB)
	leafB.Set(suffixB, valueB)
	branch.SetChild(stemB[depth], leafB)
	return branch
}

// Get looks up the value at k, returning (nil, nil) if no value is
// stored there, and an error only when a leaf exists at the relevant slot
// under a different stem than requested (a caller bug, since tree_key
// derivation guarantees distinct accounts/slots hash to distinct stems).
func (t *VerkleTrie) Get(k key.TrieKey) (*key.TrieValue, error) {
	stem := k.Stem()
	suffix := k.Suffix()

	var n node.Node = t.root
	depth := 0
	for {
		switch c := n.(type) {
		case node.Empty:
			return nil, nil
		case *node.LeafNode:
			if c.Stem != stem {
				return nil, &UnexpectedStem{Expected: stem, Actual: c.Stem}
			}
			return c.Get(suffix), nil
		case *node.BranchNode:
			n = c.Children[stem[depth]]
			depth++
		default:
			panic(fmt.Sprintf("trie: unknown node type %T", n))
		}
	}
}

// PathStep is one hop of a root-to-leaf traversal: the branch visited and
// the child index taken.
type PathStep struct {
	Branch *node.BranchNode
	Index  byte
}

// TraverseToLeaf walks from the root along stem, returning every branch
// hop taken and the leaf found at the end. It returns NodeNotFound if the
// walk reaches an empty slot, used by the portal builder to gather the
// commitments a multiproof must open (spec.md §4.9).
func (t *VerkleTrie) TraverseToLeaf(stem key.Stem) ([]PathStep, *node.LeafNode, error) {
	var path []PathStep
	var n node.Node = t.root
	depth := 0
	for {
		switch c := n.(type) {
		case node.Empty:
			return path, nil, &NodeNotFound{Stem: stem, Depth: depth}
		case *node.LeafNode:
			if c.Stem != stem {
				return path, nil, &UnexpectedStem{Expected: stem, Actual: c.Stem}
			}
			return path, c, nil
		case *node.BranchNode:
			idx := stem[depth]
			path = append(path, PathStep{Branch: c, Index: idx})
			n = c.Children[idx]
			depth++
		default:
			panic(fmt.Sprintf("trie: unknown node type %T", n))
		}
	}
}

// DebugString renders a human-readable dump of the trie's branch/leaf
// shape. It is for tests and operator tooling only, never on a proof
// path (supplemented from the original Rust workspace's trie printer).
func (t *VerkleTrie) DebugString() string {
	var sb strings.Builder
	debugNode(&sb, t.root, 0)
	return sb.String()
}

func debugNode(sb *strings.Builder, n node.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch c := n.(type) {
	case node.Empty:
		return
	case *node.LeafNode:
		fmt.Fprintf(sb, "%sleaf stem=%x\n", indent, c.Stem)
	case *node.BranchNode:
		fmt.Fprintf(sb, "%sbranch depth=%d\n", indent, c.Depth)
		for i, child := range c.Children {
			if _, empty := child.(node.Empty); empty {
				continue
			}
			fmt.Fprintf(sb, "%s[%d]:\n", indent, i)
			debugNode(sb, child, depth+1)
		}
	}
}
