package bitmap

/*

# Bit addressable, memory mapped storage

A Bitmap owns a fixed length byte region and exposes bit level and byte range
access to it. The region is either anonymous (process private, gone on close)
or mapped from a file. File mappings are shared by default, so every process
mapping the same file sees the same bytes once they are flushed. A private
file mapping is copy-on-write: the file provides the initial content and
mutations never reach it.

## Bit numbering

Bit i lives in byte i>>3 at position 7-(i%8). Bit 0 is the most significant
bit of byte 0:

	byte       0                 1
	bit     0 1 2 3 4 5 6 7 | 8 9 ...
	mask   80 40 .. .. .. 01 | 80 40 ...

This is the opposite convention to the LSB0 numbering used by in-memory
bitsets. It is fixed because the files are shared with other implementations.

## Files

A file shorter than the requested length is zero extended in bounded chunks
before it is mapped. Bytes already present are never rewritten, which is what
makes reopening a populated file safe. A file longer than the requested length
is left alone and only the leading length bytes are mapped.

## Lifecycle

Flush makes the mapped bytes durable. FlushAsync schedules the same and
returns immediately; it says nothing about when the write completes. Close
flushes, unmaps and closes the file exactly once. Any use after Close returns
ErrClosed, except another Close.

*/
