package schedule

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Daemon owns the persistent trigger. It is the long-lived background
// context: it runs the startup transition once, registers the daily alarm
// and rotates on every fire until its context is cancelled.
type Daemon struct {
	rotator Rotator
	clock   clockwork.Clock
	host    *AlarmHost
	logger  *zap.Logger
}

// NewDaemon returns a Daemon driving r.
func NewDaemon(r Rotator, c clockwork.Clock, logger *zap.Logger) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		rotator: r,
		clock:   c,
		host:    NewAlarmHost(c),
		logger:  logger,
	}
}

// Alarms exposes the alarm host, mainly to inspect the registered alarm.
func (d *Daemon) Alarms() *AlarmHost {
	return d.host
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.host.Close()

	// Startup transition. A failure here is reported but does not stop the
	// alarm from being registered.
	if e, rotated, err := d.rotator.EnsureCurrent(ctx); err != nil {
		d.logger.Error("Failed to load current word at startup", zap.Error(err))
	} else if rotated {
		d.logger.Info("No stored word, rotated at startup", zap.String("word", e.Word))
	}

	first := NextMidnight(wallNow(d.clock))
	if err := d.host.Register(AlarmName, AlarmSpec{When: first, PeriodInMinutes: PeriodInMinutes}); err != nil {
		return err
	}
	d.logger.Info("Registered daily rotation alarm",
		zap.String("alarm", AlarmName),
		zap.Time("first", first),
		zap.Int("period_minutes", PeriodInMinutes))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Rotation daemon stopped")
			return nil
		case name := <-d.host.Fired():
			if name != AlarmName {
				continue
			}
			d.logger.Info("Running scheduled rotation")
			e, err := d.rotator.Next(ctx)
			if err != nil {
				d.logger.Error("Failed to run scheduled rotation", zap.Error(err))
				continue
			}
			d.logger.Info("Rotated word", zap.String("word", e.Word))
		}
	}
}
