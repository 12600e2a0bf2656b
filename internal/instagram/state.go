package instagram

import (
	"encoding/json"
	"fmt"
)

// sessionState is the opaque blob the manager persists between
// invocations. Nothing outside this package looks inside it.
type sessionState struct {
	Username string            `json:"username"`
	UserID   string            `json:"user_id"`
	Device   Device            `json:"device"`
	Cookies  map[string]string `json:"cookies"`
}

func (s sessionState) valid() bool {
	return len(s.Username) > 0 && len(s.Cookies) > 0
}

func encodeState(state sessionState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (sessionState, error) {
	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return sessionState{}, fmt.Errorf("failed to decode session state: %w", err)
	}
	if !state.valid() {
		return sessionState{}, fmt.Errorf("session state is missing its owner or cookies")
	}
	return state, nil
}
