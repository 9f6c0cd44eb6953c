package key

import (
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Account leaf-suffix constants (EIP-6800/7864 style basic-data layout).
const (
	VersionLeafKey     = 0
	BalanceLeafKey     = 1
	NonceLeafKey       = 2
	CodeKeccakLeafKey  = 3
	CodeSizeLeafKey    = 4
	HeaderStorageOffset = 64
	CodeOffset          = 128
	NodeWidth           = 256
)

// mainStorageOffset is 2^56 * 2^192 = 2^248, the tree-index origin for
// storage slots whose key is at or beyond the header-reserved range.
var mainStorageOffset = func() *uint256.Int {
	one := uint256.NewInt(1)
	return new(uint256.Int).Lsh(one, 248)
}()

// Keccak256 hashes data with the Keccak-256 permutation, matching the
// ethereum ecosystem's account/code hashing (not NIST SHA3-256).
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// treeKeyPrefix derives the 31-byte stem for (address, treeIndex): the
// Keccak-256 digest of the address left-padded to 32 bytes, concatenated
// with the tree index encoded as a 32-byte little-endian integer.
func treeKeyPrefix(address [20]byte, treeIndex *uint256.Int) Stem {
	var addr32 [32]byte
	copy(addr32[12:], address[:])

	idxBytes := treeIndex.Bytes32()
	// uint256.Bytes32 is big-endian; the tree key derivation is defined over
	// a little-endian encoding of the index.
	var idxLE [32]byte
	for i, b := range idxBytes {
		idxLE[31-i] = b
	}

	digest := Keccak256(addr32[:], idxLE[:])
	var s Stem
	copy(s[:], digest[:StemSize])
	return s
}

// TreeKey computes the full 32-byte trie key for (address, treeIndex,
// subIndex).
func TreeKey(address [20]byte, treeIndex *uint256.Int, subIndex byte) TrieKey {
	return NewTrieKey(treeKeyPrefix(address, treeIndex), subIndex)
}

// BasicDataKey returns the trie key for one of the account's basic-data
// fields (version, balance, nonce, code size); tree index 0 holds all of
// them.
func BasicDataKey(address [20]byte, leaf byte) TrieKey {
	return TreeKey(address, new(uint256.Int), leaf)
}

// CodeKeccakKey returns the trie key holding the account's code hash.
func CodeKeccakKey(address [20]byte) TrieKey {
	return BasicDataKey(address, CodeKeccakLeafKey)
}

// storageSlotPosition maps a 32-byte storage slot key to its absolute
// position in the account's flat tree-index space, per spec.md §4.3:
// slots below the header-reserved range live just after the basic-data
// fields; everything else lives past MainStorageOffset.
func storageSlotPosition(storageKey *uint256.Int) *uint256.Int {
	threshold := uint256.NewInt(CodeOffset - HeaderStorageOffset)
	if storageKey.Lt(threshold) {
		return new(uint256.Int).Add(uint256.NewInt(HeaderStorageOffset), storageKey)
	}
	return new(uint256.Int).Add(mainStorageOffset, storageKey)
}

// StorageSlotKey computes the trie key for a contract storage slot.
func StorageSlotKey(address [20]byte, storageKey *uint256.Int) TrieKey {
	pos := storageSlotPosition(storageKey)
	width := uint256.NewInt(NodeWidth)
	treeIndex, subIndex := new(uint256.Int).DivMod(pos, width, new(uint256.Int))
	return TreeKey(address, treeIndex, byte(subIndex.Uint64()))
}

// codeChunkPosition maps a code-chunk id to its absolute tree-index
// position, starting right after the basic-data/storage-header region.
func codeChunkPosition(chunkID uint64) *uint256.Int {
	return new(uint256.Int).Add(uint256.NewInt(CodeOffset), uint256.NewInt(chunkID))
}

// CodeChunkKey computes the trie key for the chunkID-th 32-byte code chunk.
func CodeChunkKey(address [20]byte, chunkID uint64) TrieKey {
	pos := codeChunkPosition(chunkID)
	width := uint256.NewInt(NodeWidth)
	treeIndex, subIndex := new(uint256.Int).DivMod(pos, width, new(uint256.Int))
	return TreeKey(address, treeIndex, byte(subIndex.Uint64()))
}

// pushImmediateSize returns the number of immediate bytes following a
// PUSH1..PUSH32 opcode (0x60-0x7f), or 0 for any other opcode.
func pushImmediateSize(opcode byte) int {
	if opcode >= 0x60 && opcode <= 0x7f {
		return int(opcode) - 0x5f
	}
	return 0
}

// ChunkifyCode splits contract bytecode into 31-byte chunks, each prefixed
// with a byte counting how many of its leading bytes are push-data
// continuing from the previous chunk (capped at 31), matching the
// code-chunking rule shared by EIP-4762/6800-style Verkle code witnesses.
func ChunkifyCode(code []byte) [][32]byte {
	if len(code) == 0 {
		return nil
	}
	numChunks := (len(code) + 30) / 31
	chunks := make([][32]byte, numChunks)

	pendingPushBytes := 0
	pos := 0
	for chunkIdx := 0; chunkIdx < numChunks; chunkIdx++ {
		rollover := pendingPushBytes
		if rollover > 31 {
			rollover = 31
		}
		chunks[chunkIdx][0] = byte(rollover)

		i := 1
		remaining := rollover
		for remaining > 0 && pos < len(code) {
			chunks[chunkIdx][i] = code[pos]
			i++
			pos++
			remaining--
		}
		pendingPushBytes -= rollover

		for i <= 31 && pos < len(code) {
			opcode := code[pos]
			chunks[chunkIdx][i] = opcode
			i++
			pos++
			if n := pushImmediateSize(opcode); n > 0 {
				pendingPushBytes = n
				for pendingPushBytes > 0 && i <= 31 && pos < len(code) {
					chunks[chunkIdx][i] = code[pos]
					i++
					pos++
					pendingPushBytes--
				}
			}
		}
	}
	return chunks
}
