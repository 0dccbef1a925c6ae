package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// drainTimeout ограничивает один проход по расписанию.
const drainTimeout = 4 * time.Minute

// StartCron запускает Drain по расписанию spec (формат robfig/cron, например "@every 5m").
// Запуск пропускается, если предыдущий ещё не закончился. Остановка — через Stop().
func StartCron(r *Reconciler, spec string, logger *log.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = log.Default()
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		if _, err := r.Drain(ctx); err != nil {
			logger.Printf("[RECONCILE] drain error: %v", err)
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Printf("[RECONCILE] started schedule=%q", spec)
	c.Start()
	return c, nil
}
