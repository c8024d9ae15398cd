package application

import (
	"context"
	"errors"
	"time"

	"lambolotto/domain/entities"

	log "github.com/sirupsen/logrus"
)

// DrawWorker settles rounds on schedule. It sleeps until the active
// round's end time, runs the draw, and repeats with the round the draw
// opened.
type DrawWorker struct {
	lottery *Lottery
}

// NewDrawWorker creates a new draw worker
func NewDrawWorker(lottery *Lottery) *DrawWorker {
	return &DrawWorker{lottery: lottery}
}

// Start begins the draw worker and returns a stop function
func (w *DrawWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.Info("Draw worker started")

		for {
			round, err := w.lottery.GetCurrentRound(ctx)
			if err != nil {
				log.Errorf("Failed to get current round: %v", err)
				select {
				case <-ctx.Done():
					log.Info("Draw worker shutting down (context cancelled)")
					return
				case <-stopChan:
					log.Info("Draw worker shutting down (stop requested)")
					return
				case <-time.After(time.Minute):
					continue
				}
			}

			waitDuration := time.Until(round.EndTime)
			if waitDuration > 0 {
				log.Infof("Next draw at %v (in %v)", round.EndTime.UTC(), waitDuration)
				select {
				case <-ctx.Done():
					log.Info("Draw worker shutting down (context cancelled)")
					return
				case <-stopChan:
					log.Info("Draw worker shutting down (stop requested)")
					return
				case <-time.After(waitDuration):
				}
			}

			if _, err := w.lottery.CompleteDueRound(ctx); err != nil {
				switch {
				case errors.Is(err, entities.ErrNoActiveRound):
					// Another instance settled the round first.
					log.Info("Round already settled elsewhere")
				case errors.Is(err, entities.ErrRoundNotExpired):
					// Clock skew against the database; retry shortly.
					log.Debug("Round not due yet, rechecking")
					time.Sleep(5 * time.Second)
				default:
					log.Errorf("Failed to complete round: %v", err)
					time.Sleep(time.Minute)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
