package bloom

/*

# Persistent bloom filters over a bitmap

This package provides a single, fixed capacity bloom filter that lives
entirely inside one bitmap.Bitmap, header included, so that a filter file is
self describing and can be reopened by any implementation of the format.

## What Bloom filters are (and are not)

Bloom filters provide a *probabilistic* membership test:

- If the filter says "definitely not present", then the key was never added.
- If the filter says "maybe present", then the key may or may not have been
  added (false positives are possible).

They do not store keys and can't enumerate or remove them.

## Layout

	+----------------------+  byte 0
	| bit array            |  Bits() = 8 * (size - HeaderBytes)
	|                      |
	+----------------------+  size - 12
	| count  (u64 LE)      |
	| k      (u32 LE)      |
	+----------------------+  size

The header is a tail record rather than a prefix so that bit i of the array
is bit i of the bitmap. A zero k marks an uninitialized header; the first
opener writes its k there and every later opener must use it.

## Indexing and bit numbering

Bit positions are hashmix.Hashes(key, k) reduced modulo Bits(). Bit i is
the (7 - i%8)th bit of byte i>>3, most significant first (see package bitmap).

## Counting

The count is kept in memory and written to the header by Flush and Close. It
is the number of successful Add calls, not the number of distinct keys.

*/
