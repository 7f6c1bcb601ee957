// Package engine runs interaction timelines against a host document.
//
// The engine owns the state store and reacts to every dispatch: it renders
// instances whose computed values changed, records those values per
// element, removes completed instances, and cascades a completed carrier
// into the next group of its action list.
//
// Single writer:
// All engine work happens on one goroutine. Hosted engines run Run and
// receive host input, frames, and control requests as queued tasks. Tests
// drive the engine directly from the test goroutine with a host.FrameQueue
// and the in-memory document.
//
// Event binding:
// Start binds each event of the imported model in declaration order.
// Timed events start their action list's first group on the element they
// fired on; continuous events create parameter-driven instances up front
// and bind the input that moves their parameters.
//
// Journal:
// With WithJournal every dispatched message is stamped with a seq from a
// logical Clock and appended under the current session token. Stop records
// the state hash the session reached, which replay checks.
package engine
