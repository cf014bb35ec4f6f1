package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
)

func SerializeToJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[KafkaUtils] Failed to serialize JSON",
			slog.String("error", err.Error()))
		return nil, err
	}
	return data, nil
}

// DeserializeFromJSON decodes data into v. An empty payload is an error.
func DeserializeFromJSON(data []byte, v any) error {
	if len(data) == 0 {
		return errors.New("[KafkaUtils] empty message payload")
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("[KafkaUtils] Failed to deserialize JSON",
			slog.String("error", err.Error()),
			slog.Int("payload_bytes", len(data)))
		return err
	}
	return nil
}

func HandleConsumerError(err error) {
	if err == nil {
		return
	}
	slog.Error("[KafkaUtils] Kafka Consumer Error",
		slog.String("error", err.Error()))
}
