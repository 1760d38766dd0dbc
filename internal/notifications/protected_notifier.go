package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrCircuitOpen = errors.New("notification provider circuit open")

type ProtectedNotifierConfig struct {
	SendTimeout time.Duration
	// Threshold is the number of failures in a row that opens the circuit.
	Threshold int
	Cooldown  time.Duration
	Probes    int
	Log       *slog.Logger
}

// ProtectedNotifier bounds every send and stops calling a provider that
// keeps failing. Jobs that hit an open circuit fail fast and are retried by
// the worker later.
type ProtectedNotifier struct {
	inner   Notifier
	timeout time.Duration
	log     *slog.Logger
	b       *breaker
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	n := &ProtectedNotifier{
		inner:   inner,
		timeout: cfg.SendTimeout,
		log:     cfg.Log,
		b: &breaker{
			threshold: cfg.Threshold,
			cooldown:  cfg.Cooldown,
			probes:    cfg.Probes,
			now:       time.Now,
		},
	}

	if n.timeout <= 0 {
		n.timeout = 3 * time.Second
	}
	if n.b.threshold <= 0 {
		n.b.threshold = 3
	}
	if n.b.cooldown <= 0 {
		n.b.cooldown = 15 * time.Second
	}
	if n.b.probes <= 0 {
		n.b.probes = 1
	}
	if n.log == nil {
		n.log = slog.Default()
	}

	return n
}

func (n *ProtectedNotifier) SendPasswordReset(ctx context.Context, in PasswordResetInput) error {
	if !n.b.allow() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.inner.SendPasswordReset(sendCtx, in)

	// the caller giving up says nothing about the provider
	if err != nil && ctx.Err() != nil {
		n.b.release()
		return err
	}

	if state, changed := n.b.record(err == nil); changed {
		level := slog.LevelWarn
		if state == closed {
			level = slog.LevelInfo
		}
		n.log.Log(ctx, level, "notifier circuit "+state.String(), "err", err)
	}
	return err
}

func (n *ProtectedNotifier) State() string {
	return n.b.current().String()
}
