package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// ChatMessage is one entry of the conversation history kept by the backend.
type ChatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ChatReply is the backend's answer to a single POST /chat.
type ChatReply struct {
	Reply   string          `json:"response"`
	UserID  string          `json:"user_id"`
	History []ChatMessage   `json:"history"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Order is a read-only order summary. TotalAmount is in the backend's minor
// currency unit.
type Order struct {
	ID          OrderID    `json:"id"`
	Status      string     `json:"status"`
	TotalAmount MinorUnits `json:"total_amount"`
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

// OrderID accepts both JSON strings and numbers.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("order id: %w", err)
	}
	*id = OrderID(n.String())
	return nil
}

func (id OrderID) String() string { return string(id) }

// MinorUnits accepts integers, floats (rounded) and numeric strings.
type MinorUnits int64

func (m *MinorUnits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("total amount: %w", err)
	}
	*m = MinorUnits(math.Round(f))
	return nil
}
