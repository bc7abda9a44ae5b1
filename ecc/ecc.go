// Package ecc implements the P/Q error correction code kernel used to
// classify (never repair) Mode 1 and Mode 2 Form 1 sectors: byte-wise
// forward/backward tables over GF(2^8) with the CD-ROM field polynomial
// 0x11D, and the two parity passes (P, Q) that interleave a sector's
// address and data bytes into a Reed-Solomon-like check.
package ecc

// forward and backward are lookup tables in GF(2^8): forward[i] is
// multiplication by the field's generator, and backward inverts
// multiplication by the generator plus one, so backward[i^forward[i]] == i.
// Computed once at package init and never mutated again.
var (
	forward [256]byte
	backward [256]byte
)

func init() {
	for i := range 256 {
		j := (i << 1) ^ 0
		if i&0x80 != 0 {
			j ^= 0x11D
		}
		j &= 0xFF
		forward[i] = byte(j)
		backward[i^j] = byte(i)
	}
}

// sizes describing a sector's ECC field layout, shared by Check and Write.
const (
	pMajor, pMinor, pMult, pInc = 86, 24, 2, 86
	qMajor, qMinor, qMult, qInc = 52, 43, 86, 88
	qOffset                     = 0xAC
)

// ZeroAddress is the four-byte placeholder address used in place of a real
// sector address for Mode 2 Form 1 ECC, both when checking and writing.
var ZeroAddress = [4]byte{0, 0, 0, 0}

// pq computes one parity pass (P or Q) over address and data, writing
// majorCount*2 bytes into ecc. address is always 4 bytes; data is indexed
// starting at byte 4 of the logical (address||data) buffer.
func pq(address, data []byte, majorCount, minorCount, majorMult, minorInc int, ecc []byte) {
	size := majorCount * minorCount
	for major := 0; major < majorCount; major++ {
		index := (major/2)*majorMult + (major % 2)
		var a, b byte
		for minor := 0; minor < minorCount; minor++ {
			var temp byte
			if index < 4 {
				temp = address[index]
			} else {
				temp = data[index-4]
			}
			index += minorInc
			if index >= size {
				index -= size
			}
			a ^= temp
			b ^= temp
			a = forward[a]
		}
		a = backward[forward[a]^b]
		ecc[major] = a
		ecc[major+majorCount] = a ^ b
	}
}

// checkPQ reports whether the pass described by (majorCount, minorCount,
// majorMult, minorInc) matches the existing bytes in ecc exactly.
func checkPQ(address, data []byte, majorCount, minorCount, majorMult, minorInc int, ecc []byte) bool {
	got := make([]byte, majorCount*2)
	pq(address, data, majorCount, minorCount, majorMult, minorInc, got)
	for i, g := range got {
		if ecc[i] != g {
			return false
		}
	}
	return true
}

// Check reports whether both the P and Q parity fields of ecc match
// address and data. ecc must have at least 0xAC+104 = 0x114 bytes
// available starting at its base offset (i.e. the full 276-byte ECC
// field of a sector).
func Check(address, data, ecc []byte) bool {
	return checkPQ(address, data, pMajor, pMinor, pMult, pInc, ecc) &&
		checkPQ(address, data, qMajor, qMinor, qMult, qInc, ecc[qOffset:])
}

// Write computes both the P and Q parity fields for address and data and
// stores them into ecc (same layout as Check).
func Write(address, data, ecc []byte) {
	pq(address, data, pMajor, pMinor, pMult, pInc, ecc)
	pq(address, data, qMajor, qMinor, qMult, qInc, ecc[qOffset:])
}
