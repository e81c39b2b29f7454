package fpdlink

// LowerByte returns bits 0-7 of v.
func LowerByte(v uint32) byte {
	return byte(v & 0xFF)
}

// UpperByte returns bits 8-15 of v.
func UpperByte(v uint32) byte {
	return byte((v & 0xFF00) >> 8)
}

// UpperByte24 returns bits 16-23 of v.
func UpperByte24(v uint32) byte {
	return byte((v & 0xFF0000) >> 16)
}

// SplitLE32 splits v into the four APB data registers, least significant first.
func SplitLE32(v uint32) [4]byte {
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// JoinLE32 is the inverse of SplitLE32.
func JoinLE32(b [4]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
