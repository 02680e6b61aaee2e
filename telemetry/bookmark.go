package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/shoal/config"
)

// BookmarkType names the kind of moment a bookmark marks.
type BookmarkType string

const (
	BookmarkPolarized BookmarkType = "polarized"
	BookmarkScattered BookmarkType = "scattered"
	BookmarkBreach    BookmarkType = "breach"
)

// Bookmark marks a notable window.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// Log writes b to logger at info level.
func (b Bookmark) Log(logger *slog.Logger) {
	logger.Info("bookmark", "type", string(b.Type), "tick", b.Tick, "description", b.Description)
}

// minSpreadHistory is the fewest past windows the scattered check averages.
const minSpreadHistory = 3

// BookmarkDetector watches closed windows for moments worth keeping.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	spreads []float64 // Ring of past SpreadMean values
	next    int
	filled  int

	polarizedRun int  // Consecutive windows at or above the threshold
	breaching    bool // Previous window was at or above the breach fraction
}

// NewBookmarkDetector returns a detector that averages spread over the last
// history windows. history is raised to 3 if smaller.
func NewBookmarkDetector(history int, cfg config.BookmarksConfig) *BookmarkDetector {
	return &BookmarkDetector{
		cfg:     cfg,
		spreads: make([]float64, max(history, minSpreadHistory)),
	}
}

// Check returns the bookmarks triggered by s and then records it.
func (bd *BookmarkDetector) Check(s WindowStats) []Bookmark {
	var out []Bookmark
	for _, check := range []func(WindowStats) (Bookmark, bool){bd.polarized, bd.scattered, bd.breach} {
		if b, ok := check(s); ok {
			out = append(out, b)
		}
	}
	bd.spreads[bd.next] = s.SpreadMean
	bd.next = (bd.next + 1) % len(bd.spreads)
	bd.filled = min(bd.filled+1, len(bd.spreads))
	return out
}

// polarized fires once when a run of aligned windows reaches the
// configured length.
func (bd *BookmarkDetector) polarized(s WindowStats) (Bookmark, bool) {
	if s.Agents < 2 || s.Polarization < bd.cfg.Polarized.Threshold {
		bd.polarizedRun = 0
		return Bookmark{}, false
	}
	bd.polarizedRun++
	if bd.polarizedRun != max(bd.cfg.Polarized.StableWindows, 1) {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkPolarized,
		Tick:        s.WindowEndTick,
		Description: fmt.Sprintf("School aligned (polarization %.2f) for %d windows", s.Polarization, bd.polarizedRun),
	}, true
}

// scattered fires when spread jumps well above its recent average.
func (bd *BookmarkDetector) scattered(s WindowStats) (Bookmark, bool) {
	if bd.filled < minSpreadHistory {
		return Bookmark{}, false
	}
	avg := stat.Mean(bd.spreads[:bd.filled], nil)
	if avg == 0 || s.SpreadMean <= bd.cfg.Scattered.MinSpread || s.SpreadMean <= avg*bd.cfg.Scattered.Multiplier {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkScattered,
		Tick:        s.WindowEndTick,
		Description: fmt.Sprintf("Spread %.1f is %.1fx average (%.1f)", s.SpreadMean, s.SpreadMean/avg, avg),
	}, true
}

// breach fires on the window where the breach fraction first reaches the
// threshold.
func (bd *BookmarkDetector) breach(s WindowStats) (Bookmark, bool) {
	above := s.Agents > 0 && s.BreachFraction >= bd.cfg.Breach.Fraction
	rising := above && !bd.breaching
	bd.breaching = above
	if !rising {
		return Bookmark{}, false
	}
	return Bookmark{
		Type:        BookmarkBreach,
		Tick:        s.WindowEndTick,
		Description: fmt.Sprintf("%d of %d agents outside the boundaries", s.OutOfBounds, s.Agents),
	}, true
}
