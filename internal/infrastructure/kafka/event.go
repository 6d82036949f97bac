package kafka

import (
	"encoding/json"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EncodeEvent упаковывает событие outbox в protobuf Struct:
// {event_id, event_type, aggregate_id, occurred_at, payload}.
// payload — JSON события, развёрнутый в Struct.
func EncodeEvent(event *usecase.OutboxEvent) ([]byte, error) {
	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	body, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	envelope := &structpb.Struct{Fields: map[string]*structpb.Value{
		"event_id":     structpb.NewStringValue(event.EventID),
		"event_type":   structpb.NewStringValue(string(event.EventType)),
		"aggregate_id": structpb.NewStringValue(event.AggregateID),
		"occurred_at":  structpb.NewNumberValue(float64(event.CreatedAt.UnixMilli())),
		"payload":      structpb.NewStructValue(body),
	}}

	data, err := proto.Marshal(envelope)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

// DecodeEvent — обратное преобразование для потребителей и тестов.
func DecodeEvent(data []byte) (*structpb.Struct, error) {
	var envelope structpb.Struct
	if err := proto.Unmarshal(data, &envelope); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &envelope, nil
}
