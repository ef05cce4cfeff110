package core

import (
	"reflect"
	"sync"
)

// EventContext carries the payload of an event. Which fields are set depends on the code.
type EventContext struct {
	Data struct {
		I64 [2]int64
		U64 [2]uint64
		F64 [2]float64

		C [2]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// An output frame was written.
	/* Context usage:
	 * u64 frame = data.U64[0];
	 * f64 seconds = data.F64[0];
	 */
	EVENT_CODE_FRAME_WRITTEN SystemEventCode = 0x01

	// The background cloud was decimated.
	/* Context usage:
	 * u64 before = data.U64[0];
	 * u64 after = data.U64[1];
	 */
	EVENT_CODE_BACKGROUND_DECIMATED SystemEventCode = 0x02

	// A run finished, successfully or not.
	/* Context usage:
	 * u64 frames = data.U64[0];
	 * string output = data.C[0];
	 */
	EVENT_CODE_RUN_FINISHED SystemEventCode = 0x03

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

var (
	eventMutex      sync.RWMutex
	eventRegistered = map[SystemEventCode][]registeredEvent{}
)

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return false.
 * @param code The event code to listen for.
 * @param listener The listener instance. Can be nil.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns true if the event is successfully registered; otherwise false.
 */
func EventRegister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	eventMutex.Lock()
	defer eventMutex.Unlock()
	for _, e := range eventRegistered[code] {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			LogWarn("event %d: listener already registered", code)
			return false
		}
	}
	eventRegistered[code] = append(eventRegistered[code], registeredEvent{listener: listener, callback: onEvent})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code.
 * @returns true if a matching registration was removed; otherwise false.
 */
func EventUnregister(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	eventMutex.Lock()
	defer eventMutex.Unlock()
	events := eventRegistered[code]
	for i, e := range events {
		if e.listener == listener && sameCallback(e.callback, onEvent) {
			eventRegistered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * true, the event is considered handled and is not passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func EventFire(code SystemEventCode, sender interface{}, context EventContext) bool {
	eventMutex.RLock()
	events := eventRegistered[code]
	eventMutex.RUnlock()
	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// EventReset drops every registration.
func EventReset() {
	eventMutex.Lock()
	defer eventMutex.Unlock()
	eventRegistered = map[SystemEventCode][]registeredEvent{}
}

// funcs are not comparable, their code pointers are
func sameCallback(a, b FnOnEvent) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
