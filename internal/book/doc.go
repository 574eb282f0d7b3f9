// Package book writes and reads opening books: a move-prefix tree laid out
// as pointer-linked blocks in a single big-endian file.
//
// File Format:
//   - File:  Block*, breadth-first, root block at offset 0
//   - Block: size (u64, header included) followed by (size-8)/24 entries
//   - Entry: 7 zero bytes, move code (u8), score (f64), child pointer (u64)
//
// Entries appear in the order their moves were first seen while the tree was
// built. A child pointer of 0 means the move has no further book data; any
// other value is the absolute offset of the child's block.
//
// Writing is two passes: every block is sized and given an address before
// the first byte is written, so the writer never seeks.
package book
