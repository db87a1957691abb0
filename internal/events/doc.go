// Package events provides the engine's event system: well-known event
// names fired during training and evaluation, an ordered handler
// manager, and firing conditions for periodic work.
//
// Handlers attach to an event name and run synchronously, in attach
// order, when the engine fires that event. The Manager is not safe for
// concurrent mutation; attachment happens during setup and firing
// happens on the engine goroutine.
package events
