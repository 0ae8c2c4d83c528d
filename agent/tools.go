package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/notify"
	"github.com/poiesic/docmind/storage"
)

// Tool is an action the agent can take instead of answering from the
// document corpus.
type Tool interface {
	// Name identifies the tool in query responses.
	Name() string

	// Triggered reports whether the query should be routed to this tool.
	Triggered(query string) bool

	// Run executes the tool and returns the reply text.
	Run(ctx context.Context, sessionID, query string) (string, error)
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	datePattern  = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	timePattern  = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	// "my name is Jane Doe" or "I am Jane Doe"
	namePattern = regexp.MustCompile(`(?i)(?:my name is|i am|i'm|this is)\s+([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+)+)`)
)

var bookingKeywords = []string{
	"book an interview", "book interview", "schedule an interview",
	"schedule interview", "arrange an interview", "interview booking",
	"book a meeting", "schedule a meeting", "book a call", "schedule a call",
}

// BookingTool creates interview bookings from natural-language
// requests. It extracts the name, email, date, and time from the query
// and stores a pending booking.
type BookingTool struct {
	bookings storage.BookingRepository
	sender   notify.Sender
}

var _ Tool = (*BookingTool)(nil)

// NewBookingTool creates a booking tool. sender may be nil to skip
// notifications.
func NewBookingTool(bookings storage.BookingRepository, sender notify.Sender) *BookingTool {
	return &BookingTool{bookings: bookings, sender: sender}
}

// Name implements Tool.
func (t *BookingTool) Name() string { return "booking" }

// Triggered reports whether the query asks to book an interview.
func (t *BookingTool) Triggered(query string) bool {
	lower := strings.ToLower(query)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Run extracts booking details from the query and stores the booking.
// Returns ErrBookingIncomplete when required fields are missing, with
// a reply text telling the caller what to provide.
func (t *BookingTool) Run(ctx context.Context, sessionID, query string) (string, error) {
	booking := &core.Booking{
		FullName: extractFirst(namePattern, query),
		Email:    emailPattern.FindString(query),
		Date:     extractFirst(datePattern, query),
		Time:     extractFirst(timePattern, query),
		Message:  query,
	}

	var missing []string
	if booking.FullName == "" {
		missing = append(missing, "your full name")
	}
	if booking.Email == "" {
		missing = append(missing, "an email address")
	}
	if booking.Date == "" {
		missing = append(missing, "a date (YYYY-MM-DD)")
	}
	if booking.Time == "" {
		missing = append(missing, "a time (HH:MM)")
	}
	if len(missing) > 0 {
		reply := fmt.Sprintf("To book an interview I still need %s.", strings.Join(missing, ", "))
		return reply, fmt.Errorf("%w: missing %s", ErrBookingIncomplete, strings.Join(missing, ", "))
	}

	if err := core.ValidateBooking(booking); err != nil {
		return "The booking details look invalid, please check the email address and try again.", err
	}

	booking, err := t.bookings.AddBooking(ctx, booking)
	if err != nil {
		return "", err
	}

	if t.sender != nil {
		subject := fmt.Sprintf("Interview booking #%d", booking.Id)
		body := fmt.Sprintf("%s <%s> requested an interview on %s at %s.",
			booking.FullName, booking.Email, booking.Date, booking.Time)
		if err := t.sender.Send(ctx, subject, body); err != nil {
			// Notification failure does not void the booking.
			return bookingReply(booking), nil
		}
	}
	return bookingReply(booking), nil
}

func bookingReply(b *core.Booking) string {
	return fmt.Sprintf("Your interview is booked for %s at %s. A confirmation will be sent to %s.",
		b.Date, b.Time, b.Email)
}

func extractFirst(re *regexp.Regexp, s string) string {
	match := re.FindStringSubmatch(s)
	if len(match) > 1 {
		return match[1]
	}
	if len(match) == 1 {
		return match[0]
	}
	return ""
}
