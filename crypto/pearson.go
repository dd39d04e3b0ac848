package crypto

import "encoding/binary"

// The Pearson-family hashes below run up to four independent 64-bit lanes
// over the input. Lane n differs from the others only by the constant n it
// subtracts after mixing in each word, so the narrower variants are exact
// suffixes of the wider ones.

// PearsonHashSize256 is the output size of PearsonHash256 in bytes.
const PearsonHashSize256 = 32

// PearsonHashSize128 is the output size of PearsonHash128 in bytes.
const PearsonHashSize128 = 16

// permute64 is David Stafford's Mix13 finalizer.
func permute64(h uint64) uint64 {
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

func hashRound(h, in, lane uint64) uint64 {
	h ^= in
	h -= lane
	return permute64(h)
}

// pearsonLanes digests in into every lane. Full words are consumed little
// endian, the tail byte by byte, and the total length is mixed in last.
func pearsonLanes(lanes []uint64, in []byte) {
	length := uint64(len(in))

	for len(in) > 7 {
		w := binary.LittleEndian.Uint64(in)
		for i := range lanes {
			lanes[i] = hashRound(lanes[i], w, uint64(i+1))
		}
		in = in[8:]
	}

	for i := range lanes {
		lanes[i] = ^lanes[i]
	}

	for _, b := range in {
		for i := range lanes {
			lanes[i] = hashRound(lanes[i], uint64(b), uint64(i+1))
		}
	}

	for i := range lanes {
		lanes[i] = ^lanes[i]
		lanes[i] = hashRound(lanes[i], length, uint64(i+1))
	}
}

// PearsonHash256 returns the 256-bit Pearson-family hash of in, stored big
// endian with the highest lane first.
//
//export TunPearsonHash256
func PearsonHash256(in []byte) [PearsonHashSize256]byte {
	var lanes [4]uint64
	pearsonLanes(lanes[:], in)

	var out [PearsonHashSize256]byte
	binary.BigEndian.PutUint64(out[0:], lanes[3])
	binary.BigEndian.PutUint64(out[8:], lanes[2])
	binary.BigEndian.PutUint64(out[16:], lanes[1])
	binary.BigEndian.PutUint64(out[24:], lanes[0])
	return out
}

// PearsonHash128 returns the 128-bit Pearson-family hash of in.
//
//export TunPearsonHash128
func PearsonHash128(in []byte) [PearsonHashSize128]byte {
	var lanes [2]uint64
	pearsonLanes(lanes[:], in)

	var out [PearsonHashSize128]byte
	binary.BigEndian.PutUint64(out[0:], lanes[1])
	binary.BigEndian.PutUint64(out[8:], lanes[0])
	return out
}

// PearsonHash64 returns the 64-bit Pearson-family hash of in. Callers that
// store it are responsible for choosing a byte order.
//
//export TunPearsonHash64
func PearsonHash64(in []byte) uint64 {
	var lanes [1]uint64
	pearsonLanes(lanes[:], in)
	return lanes[0]
}

// PearsonHash32 returns the low 32 bits of PearsonHash64.
func PearsonHash32(in []byte) uint32 {
	return uint32(PearsonHash64(in))
}

// PearsonHash16 returns the low 16 bits of PearsonHash64.
func PearsonHash16(in []byte) uint16 {
	return uint16(PearsonHash64(in))
}
