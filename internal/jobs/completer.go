package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"parkshare/internal/domain"
)

type BookingStore interface {
	ListActivePastEnd(ctx context.Context, now time.Time) ([]domain.Booking, error)
	SaveWithBlock(ctx context.Context, b *domain.Booking, blockReason string) error
}

// Completer periodically marks confirmed bookings whose end time has
// passed as completed, which also removes their derived blocks.
type Completer struct {
	bookings BookingStore
	cron     *cron.Cron
	now      func() time.Time
}

func NewCompleter(bookings BookingStore) *Completer {
	return &Completer{
		bookings: bookings,
		cron:     cron.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the completion sweep every 10 minutes. Call Stop on
// shutdown.
func (c *Completer) Start() error {
	if _, err := c.cron.AddFunc("*/10 * * * *", func() {
		if err := c.Run(context.Background()); err != nil {
			log.Printf("jobs: completion sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}
	c.cron.Start()
	return nil
}

func (c *Completer) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// Run performs one sweep. Exported so tests and one-off invocations
// can drive it without the scheduler.
func (c *Completer) Run(ctx context.Context) error {
	now := c.now()

	stale, err := c.bookings.ListActivePastEnd(ctx, now)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	log.Printf("jobs: marking %d booking(s) as completed", len(stale))

	for i := range stale {
		b := &stale[i]
		b.Status = domain.BookingCompleted
		b.UpdatedAt = now
		if err := c.bookings.SaveWithBlock(ctx, b, ""); err != nil {
			log.Printf("jobs: failed to complete booking %d: %v", b.ID, err)
		}
	}
	return nil
}
