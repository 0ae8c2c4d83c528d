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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the storage layer. Each serializer encodes a domain
// type to the MUS format used for BadgerDB values. Field order is part of
// the stored format; append new fields at the end.

// IDMUS serializes ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int { return varint.Uint64.Marshal(uint64(v), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int { return varint.Uint64.Size(uint64(v)) }

// timeMUS serializes a time.Time as a presence flag plus Unix microseconds,
// preserving IsZero across round trips.
type timeMUS struct{}

var timeSer = timeMUS{}

func (timeMUS) Marshal(t time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(!t.IsZero(), bs)
	if !t.IsZero() {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func (timeMUS) Unmarshal(bs []byte) (time.Time, int, error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return time.Time{}, n, err
	}
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func (timeMUS) Size(t time.Time) (size int) {
	size = ord.Bool.Size(!t.IsZero())
	if !t.IsZero() {
		size += varint.Int64.Size(t.UnixMicro())
	}
	return size
}

// FileRecordMUS serializes FileRecord values.
var FileRecordMUS = fileRecordMUS{}

type fileRecordMUS struct{}

func (fileRecordMUS) Marshal(v FileRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += IDMUS.Marshal(v.ContentHash, bs[n:])
	n += varint.Int64.Marshal(v.SizeBytes, bs[n:])
	n += ord.String.Marshal(v.FileType, bs[n:])
	n += ord.String.Marshal(v.ChunkingMethod, bs[n:])
	n += ord.String.Marshal(v.EmbeddingModel, bs[n:])
	n += ord.String.Marshal(v.Collection, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Int.Marshal(v.Attempts, bs[n:])
	n += ord.String.Marshal(v.FailedStage, bs[n:])
	n += ord.String.Marshal(v.ErrorDetail, bs[n:])
	n += varint.Float64.Marshal(v.ChunkingSeconds, bs[n:])
	n += varint.Float64.Marshal(v.EmbeddingSeconds, bs[n:])
	n += varint.Float64.Marshal(v.IndexingSeconds, bs[n:])
	n += timeSer.Marshal(v.UploadedAt, bs[n:])
	n += timeSer.Marshal(v.StartedAt, bs[n:])
	n += timeSer.Marshal(v.FinishedAt, bs[n:])
	n += timeSer.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (fileRecordMUS) Unmarshal(bs []byte) (v FileRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentHash, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SizeBytes, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FileType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkingMethod, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Collection, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status int
	status, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status = FileStatus(status)
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Attempts, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FailedStage, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ErrorDetail, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UploadedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.StartedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.FinishedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (fileRecordMUS) Size(v FileRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Filename)
	size += IDMUS.Size(v.ContentHash)
	size += varint.Int64.Size(v.SizeBytes)
	size += ord.String.Size(v.FileType)
	size += ord.String.Size(v.ChunkingMethod)
	size += ord.String.Size(v.EmbeddingModel)
	size += ord.String.Size(v.Collection)
	size += varint.Int.Size(int(v.Status))
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Int.Size(v.Attempts)
	size += ord.String.Size(v.FailedStage)
	size += ord.String.Size(v.ErrorDetail)
	size += varint.Float64.Size(v.ChunkingSeconds)
	size += varint.Float64.Size(v.EmbeddingSeconds)
	size += varint.Float64.Size(v.IndexingSeconds)
	size += timeSer.Size(v.UploadedAt)
	size += timeSer.Size(v.StartedAt)
	size += timeSer.Size(v.FinishedAt)
	size += timeSer.Size(v.UpdatedAt)
	return size
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(v.FileId, bs)
	n += varint.Int.Marshal(v.Index, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += varint.Int.Marshal(v.Start, bs[n:])
	n += varint.Int.Marshal(v.End, bs[n:])
	n += IDMUS.Marshal(v.PointId, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var n1 int
	v.FileId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Index, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Start, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.End, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PointId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = IDMUS.Size(v.FileId)
	size += varint.Int.Size(v.Index)
	size += ord.String.Size(v.Text)
	size += varint.Int.Size(v.Start)
	size += varint.Int.Size(v.End)
	size += IDMUS.Size(v.PointId)
	return size
}

// TurnMUS serializes Turn values.
var TurnMUS = turnMUS{}

type turnMUS struct{}

func (turnMUS) Marshal(v Turn, bs []byte) (n int) {
	n = varint.Int.Marshal(int(v.Speaker), bs)
	n += ord.String.Marshal(v.Text, bs[n:])
	n += timeSer.Marshal(v.Timestamp, bs[n:])
	return n
}

func (turnMUS) Unmarshal(bs []byte) (v Turn, n int, err error) {
	var n1 int
	var speaker int
	speaker, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Speaker = Speaker(speaker)
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (turnMUS) Size(v Turn) (size int) {
	size = varint.Int.Size(int(v.Speaker))
	size += ord.String.Size(v.Text)
	size += timeSer.Size(v.Timestamp)
	return size
}

// PerformanceRecordMUS serializes PerformanceRecord values.
var PerformanceRecordMUS = performanceRecordMUS{}

type performanceRecordMUS struct{}

func (performanceRecordMUS) Marshal(v PerformanceRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.FileId, bs[n:])
	n += ord.String.Marshal(v.ChunkingMethod, bs[n:])
	n += ord.String.Marshal(v.EmbeddingModel, bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Float64.Marshal(v.ChunkingSeconds, bs[n:])
	n += varint.Float64.Marshal(v.EmbeddingSeconds, bs[n:])
	n += varint.Float64.Marshal(v.IndexingSeconds, bs[n:])
	n += varint.Float64.Marshal(v.TotalSeconds, bs[n:])
	n += varint.Float64.Marshal(v.RecallEstimate, bs[n:])
	n += timeSer.Marshal(v.RecordedAt, bs[n:])
	return n
}

func (performanceRecordMUS) Unmarshal(bs []byte) (v PerformanceRecord, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.FileId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkingMethod, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingModel, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ChunkingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EmbeddingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexingSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.TotalSeconds, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RecallEstimate, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.RecordedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (performanceRecordMUS) Size(v PerformanceRecord) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.FileId)
	size += ord.String.Size(v.ChunkingMethod)
	size += ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Float64.Size(v.ChunkingSeconds)
	size += varint.Float64.Size(v.EmbeddingSeconds)
	size += varint.Float64.Size(v.IndexingSeconds)
	size += varint.Float64.Size(v.TotalSeconds)
	size += varint.Float64.Size(v.RecallEstimate)
	size += timeSer.Size(v.RecordedAt)
	return size
}

// BookingMUS serializes Booking values.
var BookingMUS = bookingMUS{}

type bookingMUS struct{}

func (bookingMUS) Marshal(v Booking, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.FullName, bs[n:])
	n += ord.String.Marshal(v.Email, bs[n:])
	n += ord.String.Marshal(v.Date, bs[n:])
	n += ord.String.Marshal(v.Time, bs[n:])
	n += ord.String.Marshal(v.Message, bs[n:])
	n += ord.String.Marshal(v.Status, bs[n:])
	n += timeSer.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (bookingMUS) Unmarshal(bs []byte) (v Booking, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.FullName, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Email, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Date, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Time, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Message, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Status, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.CreatedAt, n1, err = timeSer.Unmarshal(bs[n:])
	n += n1
	return
}

func (bookingMUS) Size(v Booking) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.FullName)
	size += ord.String.Size(v.Email)
	size += ord.String.Size(v.Date)
	size += ord.String.Size(v.Time)
	size += ord.String.Size(v.Message)
	size += ord.String.Size(v.Status)
	size += timeSer.Size(v.CreatedAt)
	return size
}
