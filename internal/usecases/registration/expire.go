package registration

import (
	"context"
	"time"

	"botfleet/internal/domain/activity"
	"botfleet/internal/domain/bot"
	"botfleet/pkg/logger"
)

const expireSweepPageSize = 100

// ExpireSweep walks every approved bot and transitions any whose approval
// window has lapsed into the dormant state. Meant to run periodically
// (e.g. on a ticker in the application's background loop).
func (e *Engine) ExpireSweep(ctx context.Context) (int, error) {
	now := time.Now()
	expired := 0
	offset := 0

	for {
		bots, total, err := e.botRepo.ListByApprovalStatus(ctx, bot.ApprovalApproved, expireSweepPageSize, offset)
		if err != nil {
			return expired, err
		}
		if len(bots) == 0 {
			break
		}

		pageExpired := 0
		for _, b := range bots {
			if !b.IsExpired(now) {
				continue
			}
			b.Expire()
			if err := e.botRepo.Update(ctx, b); err != nil {
				e.logger.ErrorWithError("failed to expire bot", err, logger.Fields{"bot_id": b.ID().String()})
				continue
			}
			_ = e.activityRepo.Append(ctx, activity.New(b.ID().String(), b.Tenant(), activity.KindExpiration, ""))
			expired++
			pageExpired++
		}

		// Bots expired on this page no longer match the approved filter, so
		// the next page starts that many rows earlier.
		offset += len(bots) - pageExpired
		if offset >= total-pageExpired {
			break
		}
	}

	if expired > 0 {
		e.logger.InfoWithFields("expiration sweep completed", logger.Fields{"expired": expired})
	}
	return expired, nil
}
