package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/aldeia/advisor/core"
)

// Key prefixes for different data types
const (
	chunkPrefix       = "chu"
	userRecordPrefix  = "usr"
	analyticsPrefix   = "ana"
	analyticsEventSeq = "anaseq"
)

// makeChunkKey generates a key for an indexed chunk by its string identifier.
func makeChunkKey(id string) []byte {
	return []byte(chunkPrefix + ":" + id)
}

// makeUserKey generates a key for a user record by ID.
func makeUserKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", userRecordPrefix, id))
}

// makeAnalyticsKey generates a key for an analytics event.
// The sequence ID is written BigEndian so lexicographic iteration follows
// insertion order.
func makeAnalyticsKey(id core.ID) []byte {
	prefix := analyticsPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
