package cache

import (
	"context"
	"log/slog"
)

// DirectCounters applies bumps straight to the sink. Used when redis is not
// configured; the fire-and-forget contract stays the same, only the buffering
// disappears.
type DirectCounters struct {
	sink   CounterSink
	logger *slog.Logger
}

func NewDirectCounters(sink CounterSink, logger *slog.Logger) *DirectCounters {
	return &DirectCounters{sink: sink, logger: logger}
}

func (c *DirectCounters) BumpView(ctx context.Context, catalogID int64) {
	if err := c.sink.IncrementViewCount(catalogID, 1); err != nil {
		c.logger.Debug("view counter update failed", "catalog_id", catalogID, "error", err)
	}
}

func (c *DirectCounters) BumpDownload(ctx context.Context, catalogID int64) {
	if err := c.sink.IncrementDownloadCount(catalogID, 1); err != nil {
		c.logger.Debug("download counter update failed", "catalog_id", catalogID, "error", err)
	}
}
