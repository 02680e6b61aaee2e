package game

import (
	"github.com/pthm-cable/shoal/telemetry"
)

// flushTelemetry closes the stats window when it is due, then logs, writes
// and bookmarks it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}
	g.sim.Sample(&g.sample)
	stats := g.collector.Flush(g.tick, &g.sample)
	perf := g.perfCollector.Stats()
	g.lastStats, g.lastPerf = &stats, perf

	if g.logStats {
		stats.Log(g.logger)
		perf.Log(g.logger)
	}
	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perf, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		bm.Log(g.logger)
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			g.logger.Error("failed to write bookmark", "error", err)
		}
		g.saveSnapshot(&bm)
	}
}

// saveSnapshot writes the school to the snapshot directory, tagged with
// bookmark when one triggered it. It does nothing without a directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	if g.snapshotDir == "" {
		return
	}
	snap := g.sim.Snapshot(g.tick, g.rngSeed)
	snap.Bookmark = bookmark

	path, err := telemetry.SaveSnapshot(snap, g.snapshotDir)
	if err != nil {
		g.logger.Error("failed to save snapshot", "error", err)
		return
	}
	g.logger.Info("snapshot saved", "path", path, "tick", g.tick)
}
