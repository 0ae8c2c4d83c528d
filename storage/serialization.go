// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/poiesic/docmind/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalFileRecord serializes a FileRecord to bytes.
func MarshalFileRecord(record *core.FileRecord) []byte {
	buf := make([]byte, core.FileRecordMUS.Size(*record))
	core.FileRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalFileRecord deserializes a FileRecord from bytes.
func UnmarshalFileRecord(data []byte) (*core.FileRecord, error) {
	record, _, err := core.FileRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalTurn serializes a Turn to bytes.
func MarshalTurn(turn *core.Turn) []byte {
	buf := make([]byte, core.TurnMUS.Size(*turn))
	core.TurnMUS.Marshal(*turn, buf)
	return buf
}

// UnmarshalTurn deserializes a Turn from bytes.
func UnmarshalTurn(data []byte) (*core.Turn, error) {
	turn, _, err := core.TurnMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &turn, nil
}

// MarshalPerformanceRecord serializes a PerformanceRecord to bytes.
func MarshalPerformanceRecord(record *core.PerformanceRecord) []byte {
	buf := make([]byte, core.PerformanceRecordMUS.Size(*record))
	core.PerformanceRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalPerformanceRecord deserializes a PerformanceRecord from bytes.
func UnmarshalPerformanceRecord(data []byte) (*core.PerformanceRecord, error) {
	record, _, err := core.PerformanceRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalBooking serializes a Booking to bytes.
func MarshalBooking(booking *core.Booking) []byte {
	buf := make([]byte, core.BookingMUS.Size(*booking))
	core.BookingMUS.Marshal(*booking, buf)
	return buf
}

// UnmarshalBooking deserializes a Booking from bytes.
func UnmarshalBooking(data []byte) (*core.Booking, error) {
	booking, _, err := core.BookingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
