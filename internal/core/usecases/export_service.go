package usecases

import (
	"context"
	"fmt"
	"io"

	"github.com/samirrijal/floorplan/internal/core/ports"
)

// ExportService renders stored apartments through a LayoutExporter.
type ExportService struct {
	apartments ports.ApartmentRepository
	rooms      *RoomService
	exporter   ports.LayoutExporter
}

// NewExportService creates a new ExportService.
func NewExportService(apartments ports.ApartmentRepository, rooms *RoomService, exporter ports.LayoutExporter) *ExportService {
	return &ExportService{apartments: apartments, rooms: rooms, exporter: exporter}
}

// Export writes one record for a single apartment.
func (s *ExportService) Export(ctx context.Context, w io.Writer, apartmentID string) error {
	apt, err := s.apartments.GetByID(ctx, apartmentID)
	if err != nil {
		return err
	}
	rooms, err := s.rooms.ListByApartment(ctx, apartmentID)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	return s.exporter.Write(ctx, w, apt.Description, rooms)
}

// ExportAll writes one record per stored apartment and returns how many were written.
func (s *ExportService) ExportAll(ctx context.Context, w io.Writer) (int, error) {
	const page = 200

	written := 0
	for offset := 0; ; offset += page {
		apts, total, err := s.apartments.List(ctx, page, offset)
		if err != nil {
			return written, fmt.Errorf("list apartments: %w", err)
		}
		for _, apt := range apts {
			if err := s.Export(ctx, w, apt.ID); err != nil {
				return written, fmt.Errorf("export %s: %w", apt.ID, err)
			}
			written++
		}
		if len(apts) == 0 || offset+page >= total {
			return written, nil
		}
	}
}
