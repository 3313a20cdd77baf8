// Package scan drives the per-frame detection loop: it pulls frames from a
// source one at a time, runs the active detector, feeds the stabilizer in
// strict frame order, and folds stable detections into the inventory.
package scan

import (
	"context"
	"log"
	"time"

	"gocv.io/x/gocv"

	"brick-finder/internal/detect"
	"brick-finder/internal/inventory"
	"brick-finder/internal/track"
)

// FrameSource produces BGR frames. Read returns false when no frame is
// available; the returned Mat is owned by the caller and must be closed.
type FrameSource interface {
	Read() (gocv.Mat, bool)
	Close() error
}

// Config holds the frame-loop tunables.
type Config struct {
	// Interval is the frame polling period.
	Interval time.Duration

	// MinConfidence is the floor for acting on a stable detection.
	MinConfidence float64

	// MarkCooldown is the minimum time between two automatic inventory
	// marks for the same identity, so one physically present brick is not
	// counted once per frame.
	MarkCooldown time.Duration
}

// DefaultConfig returns the reference loop configuration.
func DefaultConfig() Config {
	return Config{
		Interval:      100 * time.Millisecond,
		MinConfidence: 0.7,
		MarkCooldown:  2 * time.Second,
	}
}

// Scanner owns the frame loop. Detection is strictly sequential: one frame's
// detection completes and is pushed before the next frame is requested,
// which bounds memory and keeps stabilizer pushes in frame order.
type Scanner struct {
	source     FrameSource
	detector   detect.Detector
	stabilizer *track.Stabilizer
	set        *inventory.Set
	cfg        Config

	lastMarked map[string]time.Time
}

// New creates a scanner wiring a source, a detector and the inventory.
func New(source FrameSource, detector detect.Detector, stabilizer *track.Stabilizer,
	set *inventory.Set, cfg Config) *Scanner {
	return &Scanner{
		source:     source,
		detector:   detector,
		stabilizer: stabilizer,
		set:        set,
		cfg:        cfg,
		lastMarked: make(map[string]time.Time),
	}
}

// Run polls frames until the context is cancelled or the source dries up.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Step() {
				log.Printf("scan: frame source exhausted")
				return nil
			}
		}
	}
}

// Step processes exactly one frame: detect, push, fold stable results into
// the inventory. Returns false when the source has no more frames.
func (s *Scanner) Step() bool {
	frame, ok := s.source.Read()
	if !ok {
		return false
	}

	detections := s.detector.Detect(frame)
	frame.Close()

	s.stabilizer.Push(detections)
	s.fold(s.stabilizer.Stable())
	return true
}

// fold marks stable detections as found, at most once per identity per
// cooldown period.
func (s *Scanner) fold(stable []detect.Result) {
	now := time.Now()
	for _, d := range stable {
		if d.Confidence < s.cfg.MinConfidence {
			continue
		}
		id := d.Identity()
		if id == "" {
			continue
		}
		if last, ok := s.lastMarked[id]; ok && now.Sub(last) < s.cfg.MarkCooldown {
			continue
		}
		if s.set.MarkFound(id, 1) {
			s.lastMarked[id] = now
			log.Printf("scan: marked %s found (confidence %.2f)", id, d.Confidence)
		}
	}
}
