package state

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// NotificationEvent is a single audit log entry emitted by a contract.
type NotificationEvent struct {
	// Index is the position of the event in the audit log, it's assigned
	// when the event is stored.
	Index uint64 `json:"index" msgpack:"i"`
	// Operation is the ID of the operation that emitted the event, all
	// events of one operation share it.
	Operation uuid.UUID `json:"operation" msgpack:"o"`
	// Contract is the name of the emitting contract.
	Contract string `json:"contract" msgpack:"c"`
	// Name is the event name.
	Name string `json:"eventname" msgpack:"n"`
	// Timestamp is the operation time.
	Timestamp uint64 `json:"timestamp" msgpack:"t"`
	// Params holds event arguments in their emission order.
	Params []NotificationParam `json:"state" msgpack:"p"`
}

// NotificationParam is a named event argument. Lists (like addresses of
// AddInvestors) have several values, scalars have exactly one.
type NotificationParam struct {
	Name  string   `json:"name" msgpack:"n"`
	Value []string `json:"value" msgpack:"v"`
}

// NewParam creates a NotificationParam.
func NewParam(name string, values ...string) NotificationParam {
	return NotificationParam{Name: name, Value: values}
}

// Get returns the first value of the named parameter or an empty string if
// there is no such parameter.
func (ne *NotificationEvent) Get(name string) string {
	vals := ne.GetAll(name)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// GetAll returns all values of the named parameter.
func (ne *NotificationEvent) GetAll(name string) []string {
	for i := range ne.Params {
		if ne.Params[i].Name == name {
			return ne.Params[i].Value
		}
	}
	return nil
}

// Bytes returns msgpack-encoded event.
func (ne *NotificationEvent) Bytes() ([]byte, error) {
	return msgpack.Marshal(ne)
}

// NotificationEventFromBytes decodes msgpack-encoded event.
func NotificationEventFromBytes(b []byte) (*NotificationEvent, error) {
	ne := new(NotificationEvent)
	if err := msgpack.Unmarshal(b, ne); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	return ne, nil
}
