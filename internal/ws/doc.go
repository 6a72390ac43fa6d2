// Package ws provides WebSocket connection handling and framed event
// delivery for chat sessions.
//
// The package implements:
//   - Message: the JSON event frame exchanged with clients
//   - Client: one connected browser with a buffered outbound channel
//   - Handler: connection upgrade, read/write pumps, and relay wiring
//
// Each accepted connection owns exactly one conversation log and one relay
// controller; both are discarded when the connection closes. A reconnect
// yields a brand-new session with an empty log — there is no replay or
// queuing across reconnects. Sends to a closed client are dropped, so a
// backend reply that resolves after disconnect is a no-op rather than a
// fault.
package ws
