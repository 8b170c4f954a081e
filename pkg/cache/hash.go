package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"slices"
)

// pointDigest hashes opts into a hex SHA-256. Floats are hashed by their
// bit patterns and parameters in name order, so equal assignments always
// produce the same digest regardless of map iteration order.
func pointDigest(opts PointKeyOpts) string {
	h := sha256.New()
	writeString(h, opts.Model)
	writeFloat(h, opts.Energy)
	names := make([]string, 0, len(opts.Params))
	for name := range opts.Params {
		names = append(names, name)
	}
	slices.Sort(names)
	writeUint(h, uint64(len(names)))
	for _, name := range names {
		writeString(h, name)
		writeFloat(h, opts.Params[name])
	}
	writeUint(h, uint64(opts.To))
	writeUint(h, uint64(opts.From))
	return hex.EncodeToString(h.Sum(nil))
}

// writeString length-prefixes s so that adjacent strings cannot collide.
func writeString(h hash.Hash, s string) {
	writeUint(h, uint64(len(s)))
	h.Write([]byte(s))
}

func writeFloat(h hash.Hash, v float64) {
	if v == 0 {
		v = 0 // fold -0 into +0
	}
	writeUint(h, math.Float64bits(v))
}

func writeUint(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
