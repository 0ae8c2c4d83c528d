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


package badger

// Repositories bundles all repository implementations over one backend.
type Repositories struct {
	Backend  *Backend
	Files    *FileRepository
	Chunks   *ChunkRepository
	Sessions *SessionRepository
	Metrics  *MetricsRepository
	Bookings *BookingRepository
}

// Close closes the repositories and backend in reverse order of creation.
func (r *Repositories) Close() error {
	r.Bookings.Close()
	r.Metrics.Close()
	r.Sessions.Close()
	r.Chunks.Close()
	r.Files.Close()
	return r.Backend.Close()
}

// NewRepositories opens all repositories over a backend at path.
func NewRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	files, err := NewFileRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		files.Close()
		backend.Close()
		return nil, err
	}

	sessions, err := NewSessionRepository(backend)
	if err != nil {
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	metrics, err := NewMetricsRepository(backend)
	if err != nil {
		sessions.Close()
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	bookings, err := NewBookingRepository(backend)
	if err != nil {
		metrics.Close()
		sessions.Close()
		chunks.Close()
		files.Close()
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:  backend,
		Files:    files,
		Chunks:   chunks,
		Sessions: sessions,
		Metrics:  metrics,
		Bookings: bookings,
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must close the returned bundle when done.
func NewMemoryRepositories() (*Repositories, error) {
	return NewRepositories("", true)
}
