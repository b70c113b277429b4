package book

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// OrderID identifies a resting order by digest of (marketID, tick, index).
// Tick is the internal storage tick, so an ask's ID is computed with the
// inverted tick it actually rests at. Within one market the triple is
// unique by construction; distinct market IDs keep IDs distinct globally.
type OrderID [32]byte

func (id OrderID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText renders the ID as hex for JSON payloads.
func (id OrderID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// ComputeOrderID derives the digest for an order slot.
func ComputeOrderID(marketID uint64, tick uint16, index uint64) OrderID {
	h := sha256.New()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], marketID)
	h.Write(buf[:])

	var tickBuf [2]byte
	binary.LittleEndian.PutUint16(tickBuf[:], tick)
	h.Write(tickBuf[:])

	binary.LittleEndian.PutUint64(buf[:], index)
	h.Write(buf[:])

	var id OrderID
	copy(id[:], h.Sum(nil))
	return id
}
