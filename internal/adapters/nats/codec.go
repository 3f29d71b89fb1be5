package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/floorplan/internal/core/domain"
)

// Subjects used on the wire.
const (
	EventsSubjectPrefix = "floorplan.events."
	EventsSubjectAll    = "floorplan.events.>"
	ImportSubject       = "floorplan.import.requests"
)

// EncodeRoomEvent serializes an event as a protobuf Struct.
func EncodeRoomEvent(e *domain.RoomEvent) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"kind":         e.Kind,
		"apartment_id": e.ApartmentID,
		"room_id":      e.RoomID,
		"room_type":    e.RoomType,
		"rooms":        e.Rooms,
		"time":         e.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return proto.Marshal(st)
}

// DecodeRoomEvent is the inverse of EncodeRoomEvent.
func DecodeRoomEvent(data []byte) (*domain.RoomEvent, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	f := st.GetFields()
	e := &domain.RoomEvent{
		Kind:        f["kind"].GetStringValue(),
		ApartmentID: f["apartment_id"].GetStringValue(),
		RoomID:      f["room_id"].GetStringValue(),
		RoomType:    f["room_type"].GetStringValue(),
		Rooms:       int(f["rooms"].GetNumberValue()),
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("decode event time: %w", err)
		}
		e.Time = t
	}
	return e, nil
}

// EventJSON converts an encoded event to JSON for browser clients.
func EventJSON(data []byte) ([]byte, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return protojson.Marshal(&st)
}

// EncodeImportRequest serializes an import request as a protobuf Struct.
func EncodeImportRequest(r *domain.ImportRequest) ([]byte, error) {
	st, err := structpb.NewStruct(map[string]any{
		"request_id": r.RequestID,
		"prompt":     r.Prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode import request: %w", err)
	}
	return proto.Marshal(st)
}

// DecodeImportRequest is the inverse of EncodeImportRequest.
func DecodeImportRequest(data []byte) (*domain.ImportRequest, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode import request: %w", err)
	}
	f := st.GetFields()
	return &domain.ImportRequest{
		RequestID: f["request_id"].GetStringValue(),
		Prompt:    f["prompt"].GetStringValue(),
	}, nil
}
