package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dorahq/dora/internal/models"
	"github.com/dorahq/dora/internal/repository"
)

type AccountSweepJob struct {
	sr repository.SocialAccountRepository
}

func NewAccountSweepJob(sr repository.SocialAccountRepository) *AccountSweepJob {
	return &AccountSweepJob{sr: sr}
}

// SweepExpiredAccounts marks accounts whose access token lifetime has
// passed so the frontend can prompt the user to reconnect.
func (c *AccountSweepJob) SweepExpiredAccounts() {
	ctx := context.Background()

	accounts, err := c.sr.ListExpired(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.sr.UpdateStatus(ctx, acc.ID, models.AccountStatusExpired); err != nil {
				slog.Info("Unable to mark account expired", "platform", acc.Platform, "account_id", acc.ID)
			}
		}(acc)
	}

	wg.Wait()
}
