// Command exporter writes every stored apartment as one record per line.
//
//	exporter [-format jsonl|geojson] <out-file | ->
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/samirrijal/floorplan/internal/adapters/export"
	"github.com/samirrijal/floorplan/internal/adapters/postgres"
	"github.com/samirrijal/floorplan/internal/core/ports"
	"github.com/samirrijal/floorplan/internal/core/usecases"
	"github.com/samirrijal/floorplan/internal/pkg/config"
	"github.com/samirrijal/floorplan/internal/pkg/logging"
)

func main() {
	format := flag.String("format", "jsonl", "record format: jsonl or geojson")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: exporter [-format jsonl|geojson] <out-file | ->")
	}

	cfg, err := config.Load("floorplan-exporter")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Database.InMemory() {
		log.Fatal("database.host is memory; nothing to export")
	}

	exporter, err := newExporter(*format, cfg.Export)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	apartments := postgres.NewApartmentRepo(db)
	rooms := usecases.NewRoomService(postgres.NewRoomRepo(db), postgres.NewSpatial(db), nil, nil)
	svc := usecases.NewExportService(apartments, rooms, exporter)

	out, closeOut, err := openOutput(flag.Arg(0))
	if err != nil {
		log.Fatalf("open output: %v", err)
	}

	w := bufio.NewWriter(out)
	n, err := svc.ExportAll(ctx, w)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("export after %d records: %v", n, err)
	}
	slog.Info("export complete", "records", n, "format", *format, "out", flag.Arg(0))
}

func newExporter(format string, cfg config.ExportConfig) (ports.LayoutExporter, error) {
	switch format {
	case "jsonl":
		return export.NewConversations(cfg.HumanRole, cfg.GPTRole), nil
	case "geojson":
		return export.GeoJSON{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want jsonl or geojson)", format)
	}
}

// openOutput opens path for writing; "-" is stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
