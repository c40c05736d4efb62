package audit

import (
	"context"
	"digital-storefront/internal/client"
	"digital-storefront/internal/config"
	"digital-storefront/internal/repository"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// NewSink builds the sink selected by AUDIT_SINK.
func NewSink(ctx context.Context, cfg config.Audit, db *gorm.DB, logger *slog.Logger) (Sink, error) {
	switch strings.ToLower(cfg.Sink) {
	case "", "log":
		return NewLogSink(logger.With("module", "audit")), nil
	case "db":
		return NewDBSink(repository.NewAuditEventRepository(db)), nil
	case "kafka":
		return NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	case "redis":
		rdb, err := client.InitRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisSink(rdb, cfg.RedisStream), nil
	}
	return nil, fmt.Errorf("unknown audit sink %q", cfg.Sink)
}
