package utils

import (
	"context"
	"log"
	"time"

	"certchain/lifecycle"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[ANCHOR-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// StartAnchorScheduler runs a periodic pass that re-attempts ledger
// anchoring for ACTIVE certificates without a ledger reference. Anchoring at
// issue time is best effort, so certificates issued while the ledger was
// down pick up their anchor here.
func StartAnchorScheduler(lc *lifecycle.Service, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		logScheduler("Starting anchor retry pass")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		lc.RetryUnanchored(ctx, 50)
		logScheduler("Anchor retry pass finished")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logScheduler("Anchor scheduler started with schedule " + schedule)
	return c, nil
}
