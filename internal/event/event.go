// A small in-process event bus used to decouple the pipeline driver
// from whatever wants to observe it (currently the orchestrator, which
// renders events as log output and the run summary).
package event

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/gemeindemedia/sermonpress/pkg/logger"
	"github.com/google/uuid"
)

var log = logger.Get("EventBus")

type (
	Event         string
	Payload       any
	HandlerMethod func(Event, Payload)

	HandlerChannel chan HandlerEvent
	HandlerEvent   struct {
		Event   Event
		Payload Payload
	}

	EventDispatcher interface {
		Dispatch(Event, Payload)
	}

	EventHandler interface {
		RegisterHandlerFunction(Event, HandlerMethod)
		RegisterHandlerChannel(HandlerChannel, ...Event)
	}

	EventCoordinator interface {
		EventDispatcher
		EventHandler
	}

	eventHandler struct {
		fnHandlers   map[Event][]HandlerMethod
		chanHandlers map[Event][]HandlerChannel
	}
)

// Events dispatched by the pipeline driver as each file progresses
// through its per-file state machine. The payload of each is the
// uuid.UUID of the item concerned.
const (
	ItemUpdate   Event = "item:update"
	ItemComplete Event = "item:complete"
	ItemTroubled Event = "item:troubled"
)

func New() EventCoordinator {
	return &eventHandler{
		fnHandlers:   make(map[Event][]HandlerMethod),
		chanHandlers: make(map[Event][]HandlerChannel),
	}
}

// RegisterHandlerChannel takes an event type and a channel and will send
// Event messages on the channel any time a Dispatch for the provided event
// occurs. This method can be used multiple times for different events on
// the same channel.
//
// If the channel is blocked when the event bus attempts to send on it then
// the dispatching thread blocks too; buffer handler channels appropriately.
func (handler *eventHandler) RegisterHandlerChannel(handle HandlerChannel, events ...Event) {
	for _, event := range events {
		handler.chanHandlers[event] = append(handler.chanHandlers[event], handle)
	}
}

// RegisterHandlerFunction takes an event type and a handler method which
// will be called with the payload for the event whenever it is dispatched.
// The handle provided should return quickly, else other callers of
// Dispatch on this event bus will be blocked.
func (handler *eventHandler) RegisterHandlerFunction(event Event, handle HandlerMethod) {
	handler.fnHandlers[event] = append(handler.fnHandlers[event], handle)
}

// Dispatch takes an event type and a payload and delivers the payload to
// every handler registered for the event type provided.
func (handler *eventHandler) Dispatch(event Event, payload Payload) {
	if err := handler.validatePayload(event, payload); err != nil {
		log.Emit(logger.FATAL, "Dispatch for event %v FAILED validation: %v\n", event, err)
		return
	}

	for _, handle := range handler.fnHandlers[event] {
		handle(event, payload)
	}

	if handles, ok := handler.chanHandlers[event]; ok {
		payload := HandlerEvent{event, payload}
		for _, handle := range handles {
			handle <- payload
		}
	}
}

// validatePayload ensures that the payload provided is valid for the event
// specified. An error is returned if it is not, and the event is dropped.
func (handler *eventHandler) validatePayload(event Event, payload Payload) error {
	var payloadTypeName string
	if t := reflect.TypeOf(payload); t != nil {
		payloadTypeName = t.Name()
	} else {
		payloadTypeName = "Nil"
	}

	switch event {
	case ItemUpdate, ItemComplete, ItemTroubled:
		if _, ok := payload.(uuid.UUID); !ok {
			return fmt.Errorf("illegal payload (type %s) for %s event. Expected uuid.UUID payload", payloadTypeName, event)
		}

		return nil
	}

	return errors.New("event type not recognized for validation")
}
