package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedTypes = map[string]bool{".txt": true, ".md": true}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".txt", FileExtension("notes.txt"))
	assert.Equal(t, ".md", FileExtension("README.MD"))
	assert.Equal(t, ".gz", FileExtension("archive.tar.gz"))
	assert.Equal(t, "", FileExtension("Makefile"))
}

func TestValidateUpload(t *testing.T) {
	t.Run("valid upload", func(t *testing.T) {
		err := ValidateUpload("doc.txt", "some content", 12, 1024, testAllowedTypes)
		assert.NoError(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		err := ValidateUpload("binary.exe", "content", 7, 1024, testAllowedTypes)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("extension check is case insensitive", func(t *testing.T) {
		err := ValidateUpload("DOC.TXT", "content", 7, 1024, testAllowedTypes)
		assert.NoError(t, err)
	})

	t.Run("file too large", func(t *testing.T) {
		err := ValidateUpload("doc.txt", "content", 2048, 1024, testAllowedTypes)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("zero max size disables the limit", func(t *testing.T) {
		err := ValidateUpload("doc.txt", "content", 1<<40, 0, testAllowedTypes)
		assert.NoError(t, err)
	})

	t.Run("whitespace-only document", func(t *testing.T) {
		err := ValidateUpload("doc.txt", "  \n\t  ", 6, 1024, testAllowedTypes)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}

func TestValidateTurn(t *testing.T) {
	t.Run("valid turn", func(t *testing.T) {
		turn := &Turn{Speaker: SpeakerUser, Text: "hello", Timestamp: time.Now()}
		assert.NoError(t, ValidateTurn(turn))
	})

	t.Run("empty text", func(t *testing.T) {
		err := ValidateTurn(&Turn{Speaker: SpeakerUser, Text: "   "})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyTurnText)
	})

	t.Run("invalid speaker", func(t *testing.T) {
		err := ValidateTurn(&Turn{Speaker: 0, Text: "hello"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidSpeaker)
	})

	t.Run("future timestamp", func(t *testing.T) {
		turn := &Turn{Speaker: SpeakerAgent, Text: "hello", Timestamp: time.Now().Add(time.Hour)}
		err := ValidateTurn(turn)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})

	t.Run("zero timestamp accepted", func(t *testing.T) {
		assert.NoError(t, ValidateTurn(&Turn{Speaker: SpeakerUser, Text: "hello"}))
	})
}

func TestValidateBooking(t *testing.T) {
	t.Run("valid booking", func(t *testing.T) {
		booking := &Booking{FullName: "Jane Doe", Email: "jane@example.com"}
		assert.NoError(t, ValidateBooking(booking))
	})

	t.Run("missing name", func(t *testing.T) {
		err := ValidateBooking(&Booking{FullName: " ", Email: "jane@example.com"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyBookingName)
	})

	t.Run("malformed email", func(t *testing.T) {
		for _, email := range []string{"", "jane", "jane@", "@example.com", "jane@example"} {
			err := ValidateBooking(&Booking{FullName: "Jane Doe", Email: email})
			assert.ErrorIs(t, err, ErrInvalidBookingEmail, "email %q", email)
		}
	})
}
