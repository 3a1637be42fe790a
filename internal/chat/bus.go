package chat

import "encoding/json"

// Event is the unit published to a chat room. ExcludeUserID suppresses
// delivery to the named user's connections (typing rebroadcasts exclude the
// sender); zero means deliver to everyone.
type Event struct {
	Name          string          `json:"event"`
	Payload       json.RawMessage `json:"data"`
	ExcludeUserID uint            `json:"exclude_user_id,omitempty"`
}

// NewEvent marshals the payload into an event.
func NewEvent(name string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Payload: raw}, nil
}

// Bus is the gateway's publish/subscribe boundary. A single instance runs
// on the in-process LocalBus; scaling out swaps in a broker-backed
// implementation so broadcasts fan out across instances.
type Bus interface {
	Publish(room string, event Event) error
	// Subscribe registers a handler for a room and returns a cancel func.
	// Handlers for one room are invoked in publish order.
	Subscribe(room string, handler func(Event)) (func(), error)
	Close()
}
