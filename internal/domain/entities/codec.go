package entities

import (
	"encoding/json"
	"fmt"
)

// EncodeList stores items as a JSON array of independently encoded records.
func EncodeList[T any](items []T) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		records = append(records, raw)
	}
	return json.Marshal(records)
}

// DecodeRecord decodes one stored record.
func DecodeRecord[T any](raw []byte) (T, error) {
	var item T
	if string(raw) == "null" {
		return item, fmt.Errorf("decode record: null record")
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, fmt.Errorf("decode record: %w", err)
	}
	return item, nil
}

// DecodeList decodes a blob written by EncodeList. Records that fail to
// decode are skipped and counted in failed; only an unreadable outer
// array is an error.
func DecodeList[T any](blob []byte) (items []T, failed int, err error) {
	var records []json.RawMessage
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, 0, fmt.Errorf("decode list: %w", err)
	}

	items = make([]T, 0, len(records))
	for _, raw := range records {
		item, err := DecodeRecord[T](raw)
		if err != nil {
			failed++
			continue
		}
		items = append(items, item)
	}
	return items, failed, nil
}
