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
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileExtension returns the lowercase filename extension, including
// the leading dot.
func FileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ValidateUpload checks an upload before any state is created for it.
//
// Validation rules:
//   - the filename extension must be in allowedTypes (lowercase, with dot)
//   - size must not exceed maxSize when maxSize > 0
//   - the document must contain non-whitespace text
//
// All returned errors wrap ErrValidation.
func ValidateUpload(filename string, text string, size, maxSize int64, allowedTypes map[string]bool) error {
	ext := FileExtension(filename)
	if !allowedTypes[ext] {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrUnsupportedFileType, ext)
	}
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("%w: %w: %d bytes (limit %d)", ErrValidation, ErrFileTooLarge, size, maxSize)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyDocument)
	}
	return nil
}

// ValidateTurn checks a conversation turn before it is persisted.
//
// Validation rules:
//   - Text must not be empty
//   - Speaker must be valid (user or agent)
//   - Timestamp must not be in the future
func ValidateTurn(t *Turn) error {
	if strings.TrimSpace(t.Text) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTurnText)
	}
	if t.Speaker != SpeakerUser && t.Speaker != SpeakerAgent {
		return fmt.Errorf("%w: %w: %d", ErrValidation, ErrInvalidSpeaker, int(t.Speaker))
	}
	if !t.Timestamp.IsZero() && t.Timestamp.After(time.Now().Add(time.Minute)) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidTimestamp)
	}
	return nil
}

// ValidateBooking checks a booking created by the booking tool.
func ValidateBooking(b *Booking) error {
	if strings.TrimSpace(b.FullName) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyBookingName)
	}
	at := strings.Index(b.Email, "@")
	if at < 1 || !strings.Contains(b.Email[at:], ".") {
		return fmt.Errorf("%w: %w: %q", ErrValidation, ErrInvalidBookingEmail, b.Email)
	}
	return nil
}
