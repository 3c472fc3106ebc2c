package bloom

import "encoding/binary"

func readU32LE(b []byte) uint32     { return binary.LittleEndian.Uint32(b) }
func readU64LE(b []byte) uint64     { return binary.LittleEndian.Uint64(b) }
func writeU32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func writeU64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
