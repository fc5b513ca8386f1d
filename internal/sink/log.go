package sink

import (
	"context"
	"log/slog"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

// LogSink writes alerts at warn level and summaries at info level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) EmitAlert(ctx context.Context, alert events.Alert) {
	attrs := []any{
		"alert_id", alert.AlertID,
		"alert_type", alert.Type,
		"run_id", alert.RunID,
	}
	switch alert.Type {
	case events.AlertBossAppeared:
		attrs = append(attrs, "boss", alert.BossName)
		if alert.Room != nil {
			attrs = append(attrs, "room", *alert.Room)
		}
	case events.AlertPlayerDied:
		attrs = append(attrs, "cause", alert.Cause)
	case events.AlertJackpotLoot:
		attrs = append(attrs, "gold_found", alert.GoldFound)
	case events.AlertLowHP:
		if alert.HP != nil {
			attrs = append(attrs, "hp", *alert.HP)
		}
	}
	s.logger.WarnContext(ctx, alert.Message(), attrs...)
}

func (s *LogSink) EmitSummary(ctx context.Context, summary events.Summary) {
	s.logger.InfoContext(ctx, summary.String(),
		"run_id", summary.RunID,
		"event", summary.EventKind,
		"rooms_seen", summary.RoomsSeen,
		"hp", summary.HP,
		"gold", summary.Gold,
		"xp", summary.XP,
		"alert_count", summary.AlertCount,
	)
}

func (s *LogSink) Close() error { return nil }
