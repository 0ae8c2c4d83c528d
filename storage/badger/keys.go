package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docmind/core"
)

// Key prefixes for different data types
const (
	fileRecordPrefix  = "filrec"
	fileHashPrefix    = "filhsh"
	fileIDSeq         = "filrecseq"
	chunkRecordPrefix = "chkrec"
	sessionTurnPrefix = "sestrn"
	sessionSeqPrefix  = "sesseq"
	perfRecordPrefix  = "perrec"
	perfFilePrefix    = "perfil"
	perfIDSeq         = "perrecseq"
	bookingPrefix     = "bokrec"
	bookingIDSeq      = "bokrecseq"
)

// makeFileRecordKey generates a key for a file record by ID.
func makeFileRecordKey(id core.ID) []byte {
	return makeIDKey(fileRecordPrefix, id)
}

// makeFileHashKey generates a key for the content-hash index.
func makeFileHashKey(hash core.ID) []byte {
	return makeIDKey(fileHashPrefix, hash)
}

// makeChunkKey generates a composite key for a chunk.
// Format: prefix:fileID:index, both BigEndian so iteration yields
// chunks in index order.
func makeChunkKey(fileID core.ID, index int) []byte {
	prefix := []byte(chunkRecordPrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makeChunkPrefix generates the key prefix covering all chunks of a file.
func makeChunkPrefix(fileID core.ID) []byte {
	prefix := []byte(chunkRecordPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	return buf
}

// makeSessionTurnKey generates a composite key for a session turn.
// Format: prefix:sessionID:seq, seq BigEndian so iteration yields
// turns in append order.
func makeSessionTurnKey(sessionID string, seq uint64) []byte {
	prefix := fmt.Sprintf("%s:%s:", sessionTurnPrefix, sessionID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeSessionPrefix generates the key prefix covering all turns of a session.
func makeSessionPrefix(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", sessionTurnPrefix, sessionID))
}

// makePerfRecordKey generates a key for a performance record by ID.
func makePerfRecordKey(id core.ID) []byte {
	return makeIDKey(perfRecordPrefix, id)
}

// makePerfFileKey generates a composite key for the per-file metrics index.
// Format: prefix:fileID:recordID, both BigEndian.
func makePerfFileKey(fileID, recordID core.ID) []byte {
	prefix := []byte(perfFilePrefix + ":")
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(recordID))
	return buf
}

// makePerfFilePrefix generates the index prefix covering one file's metrics.
func makePerfFilePrefix(fileID core.ID) []byte {
	prefix := []byte(perfFilePrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fileID))
	return buf
}

// makeBookingKey generates a key for a booking by ID.
func makeBookingKey(id core.ID) []byte {
	return makeIDKey(bookingPrefix, id)
}

// makeIDKey generates a prefix:id key with the ID in BigEndian so
// iteration over the prefix yields records in ID order.
func makeIDKey(prefix string, id core.ID) []byte {
	p := []byte(prefix + ":")
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
