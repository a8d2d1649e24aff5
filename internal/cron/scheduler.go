// Package cron runs the background sweeps: expiring stale pending
// payments and re-verifying hosted payments whose webhook never arrived.
package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"freshmart/internal/gateway"
	"freshmart/internal/ledger"
	"freshmart/internal/models"
	"freshmart/internal/repository"
)

const sweepBatchSize = 200

// staleVerifyAge is how long a hosted payment may sit pending before we
// stop waiting for the webhook and ask the provider directly.
const staleVerifyAge = 15 * time.Minute

// Scheduler manages the payment sweeps.
type Scheduler struct {
	cron     *cron.Cron
	payments *repository.PaymentRepository
	ledger   *ledger.Ledger
	gateways *gateway.Registry
	logger   *zap.Logger
}

func New(payments *repository.PaymentRepository, lg *ledger.Ledger, gateways *gateway.Registry, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		payments: payments,
		ledger:   lg,
		gateways: gateways,
		logger:   logger,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Expire stale pending payments - every hour
	s.cron.AddFunc("0 0 * * * *", func() {
		s.logger.Debug("Running: payment expire")
		s.paymentExpire()
	})

	// Re-verify pending hosted payments - every 10 minutes
	s.cron.AddFunc("0 */10 * * * *", func() {
		s.logger.Debug("Running: stale payment verify")
		s.staleVerify()
	})

	s.cron.Start()
	s.logger.Info("Cron scheduler started")
}

// Stop stops the scheduler and returns a context that closes when
// running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// paymentExpire cancels pending payments that sat past their expiry.
func (s *Scheduler) paymentExpire() {
	defer s.recoverFromPanic("paymentExpire")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	payments, err := s.payments.FindExpiredPending(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		s.logger.Error("Expired payment lookup failed", zap.Error(err))
		return
	}

	cancelled := 0
	for i := range payments {
		p := &payments[i]
		_, err := s.ledger.Transition(ctx, p.ID, models.StatusPending, models.StatusCancelled, ledger.Evidence{
			Source: models.SourceCron,
			Raw:    "expired without confirmation",
		})
		if err != nil {
			// a webhook or admin may have resolved it between the read
			// and our write; the guard handles that for us
			s.logger.Debug("Expiry sweep skipped payment",
				zap.String("payment_id", p.ID), zap.Error(err))
			continue
		}
		cancelled++
	}

	s.logger.Debug("Payment expire completed",
		zap.Int("checked", len(payments)), zap.Int("cancelled", cancelled))
}

// staleVerify asks the provider directly about hosted payments whose
// webhook never arrived.
func (s *Scheduler) staleVerify() {
	defer s.recoverFromPanic("staleVerify")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-staleVerifyAge)
	payments, err := s.payments.FindStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		s.logger.Error("Stale payment lookup failed", zap.Error(err))
		return
	}

	resolved := 0
	for i := range payments {
		if s.verifyOne(ctx, &payments[i]) {
			resolved++
		}
	}

	s.logger.Debug("Stale payment verify completed",
		zap.Int("checked", len(payments)), zap.Int("resolved", resolved))
}

func (s *Scheduler) verifyOne(ctx context.Context, p *models.Payment) bool {
	gw, err := s.gateways.Get(p.Gateway)
	if err != nil {
		s.logger.Warn("Stale payment on unconfigured gateway",
			zap.String("payment_id", p.ID), zap.String("gateway", string(p.Gateway)))
		return false
	}

	res, err := gw.Verify(ctx, p.GatewayReference)
	if err != nil {
		if gateway.IsNetwork(err) {
			s.logger.Debug("Provider unreachable during stale verify",
				zap.String("payment_id", p.ID), zap.Error(err))
		} else {
			s.logger.Warn("Stale verify rejected by provider",
				zap.String("payment_id", p.ID), zap.Error(err))
		}
		return false
	}

	if res.Status == models.StatusPending || res.Status == p.Status {
		return false
	}

	if res.Status == models.StatusCompleted && !res.Amount.IsZero() && !res.Amount.Equal(p.Amount) {
		s.logger.Error("Verify amount does not match the recorded charge",
			zap.String("payment_id", p.ID),
			zap.String("recorded", p.Amount.String()),
			zap.String("reported", res.Amount.String()))
	}

	_, err = s.ledger.Transition(ctx, p.ID, p.Status, res.Status, ledger.Evidence{
		Source:   models.SourceGatewayVerify,
		Raw:      string(res.Raw),
		AuthCode: res.AuthCode,
	})
	if err != nil {
		s.logger.Debug("Stale verify lost transition race",
			zap.String("payment_id", p.ID), zap.Error(err))
		return false
	}
	return true
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
