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

import "errors"

// Domain validation errors
var (
	// ErrValidation is the root of the validation error family.
	// All input-rejection errors wrap it so callers can detect the
	// class with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupportedFileType indicates an upload with a disallowed extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge indicates an upload exceeding the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyDocument indicates an upload with no extractable text.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrInvalidFileStatus indicates an unknown FileStatus value or name.
	ErrInvalidFileStatus = errors.New("invalid file status")

	// ErrInvalidSpeaker indicates an invalid Speaker value.
	ErrInvalidSpeaker = errors.New("invalid speaker")

	// ErrEmptyTurnText indicates a conversation turn with no text.
	ErrEmptyTurnText = errors.New("turn text cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyBookingName indicates a booking without a full name.
	ErrEmptyBookingName = errors.New("booking name cannot be empty")

	// ErrInvalidBookingEmail indicates a booking with a malformed email address.
	ErrInvalidBookingEmail = errors.New("booking email is invalid")
)
