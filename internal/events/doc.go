// Package events provides the study-session event types and a simple
// in-process emitter.
//
// The session controller emits an event after every state change. Render
// adapters and the metrics recorder subscribe as handlers, so the controller
// never knows who is listening.
//
// The primary components are:
// - SessionEvent: a state change in one study session
// - EventHandler: interface for components that handle events
// - EventEmitter: interface for components that emit events
package events
