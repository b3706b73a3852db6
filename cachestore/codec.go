package cachestore

import (
	"encoding/json"
	"fmt"
)

// codecVersion is bumped whenever the payload layout changes so stale or
// foreign payloads are rejected instead of misread.
const codecVersion = 1

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

func encode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("cachestore: encode: %w", err)
	}
	raw, err := json.Marshal(envelope{Version: codecVersion, Data: data})
	if err != nil {
		return "", fmt.Errorf("cachestore: encode: %w", err)
	}
	return string(raw), nil
}

func decode(raw string, dest any) error {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheRead, err)
	}
	if env.Version != codecVersion || env.Data == nil {
		return fmt.Errorf("%w: unexpected envelope version %d", ErrCacheRead, env.Version)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheRead, err)
	}
	return nil
}
