package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
)

// maxLineBytes bounds a single prompt line.
const maxLineBytes = 1 << 20

type promptLine struct {
	No   int
	Text string
}

// summary counts per-line outcomes.
type summary struct {
	Total    int
	Imported int
	Failed   int
	Rooms    int
}

func (s summary) String() string {
	return fmt.Sprintf("%d lines: %d imported (%d rooms), %d failed", s.Total, s.Imported, s.Rooms, s.Failed)
}

// importFunc imports one prompt and returns the number of rooms stored.
type importFunc func(ctx context.Context, line promptLine) (int, error)

// readPrompts returns the non-blank lines of r with their 1-based line numbers.
func readPrompts(r io.Reader) ([]promptLine, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []promptLine
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		lines = append(lines, promptLine{No: n, Text: text})
	}
	return lines, sc.Err()
}

// run imports lines with at most concurrency imports in flight. Failures are
// logged per line and never stop the run.
func run(ctx context.Context, lines []promptLine, concurrency int, fn importFunc) summary {
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sum = summary{Total: len(lines)}
	)
	sem := make(chan struct{}, concurrency)

	for _, line := range lines {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(l promptLine) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			rooms, err := fn(ctx, l)
			metrics.ImportDuration.WithLabelValues("importer").Observe(time.Since(start).Seconds())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.ImportsProcessed.WithLabelValues("importer", "error").Inc()
				sum.Failed++
				slog.Error("import failed", "line", l.No, "error", err)
				return
			}
			metrics.ImportsProcessed.WithLabelValues("importer", "ok").Inc()
			sum.Imported++
			sum.Rooms += rooms
		}(line)
	}

	wg.Wait()
	// Lines never started because of cancellation count as failed.
	sum.Failed = sum.Total - sum.Imported
	return sum
}

// checkRooms validates every shape and rejects any intersecting pair, so a
// batch insert into a fresh apartment keeps the no-overlap invariant.
func checkRooms(rooms []domain.Room) error {
	for i := range rooms {
		if err := geospatial.Validate(rooms[i].Shape); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidShape, rooms[i].Type, err)
		}
		for j := 0; j < i; j++ {
			if geospatial.Intersects(rooms[j].Shape, rooms[i].Shape) {
				return fmt.Errorf("%w: %s intersects %s", domain.ErrRoomOverlap, rooms[i].Type, rooms[j].Type)
			}
		}
	}
	return nil
}

var errNoRooms = errors.New("geojson holds no rooms")
