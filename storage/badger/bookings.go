package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/storage"
)

// BookingRepository implements storage.BookingRepository for BadgerDB.
type BookingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.BookingRepository = (*BookingRepository)(nil)

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(backend *Backend) (*BookingRepository, error) {
	idSeq, err := backend.GetSequence(bookingIDSeq)
	if err != nil {
		return nil, err
	}

	return &BookingRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *BookingRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *BookingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddBooking adds a booking.
func (r *BookingRepository) AddBooking(ctx context.Context, booking *core.Booking) (*core.Booking, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if booking.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			booking.Id = core.ID(nextID)
		}
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = time.Now().UTC()
		}
		if booking.Status == "" {
			booking.Status = "pending"
		}

		key := makeBookingKey(booking.Id)
		if err := tx.Set(key, storage.MarshalBooking(booking)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return booking, err
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id core.ID) (*core.Booking, error) {
	var result *core.Booking
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBookingKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalBooking(val)
			return err
		})
	}, false)
	return result, err
}

// ListBookings retrieves all bookings, ordered by ID.
func (r *BookingRepository) ListBookings(ctx context.Context) ([]*core.Booking, error) {
	var results []*core.Booking
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var booking *core.Booking
			err := iter.Item().Value(func(val []byte) error {
				var err error
				booking, err = storage.UnmarshalBooking(val)
				return err
			})
			if err != nil {
				return err
			}
			if booking != nil {
				results = append(results, booking)
			}
		}
		return nil
	}, false)
	return results, err
}
