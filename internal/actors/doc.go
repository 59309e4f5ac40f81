// Package actors keeps a set of open rooms consistent with the room server.
//
// # Actors
//
// The [Supervisor] is the only consumer of the transport. It owns a registry of [RoomActor] values keyed by room id,
// at most one [CreationWizard], and the [InvitationHandler]. Each actor is a state machine with a tagged state enum and
// a single dispatch function; it never touches the transport or the presentation layer directly and instead returns
// effects that the supervisor executes.
//
// # Concurrency
//
// Everything runs on the supervisor goroutine started by [Supervisor.Run]. UI commands, transport events, timer fires
// and metadata fetch results are all serialized through it, so actors need no locks. Readers obtain immutable
// snapshots through [Supervisor.View], which is published after every dispatch.
//
// # Mutations
//
// A room accepts one edit at a time. An accepted edit walks
//
//	sendingToServer -> waitingForServerAcknowledgement -> debouncing -> idle
//
// and the room reports FreezeUI until it is idle again. A server rejection restores the track list that was
// mirrored before the edit, unless an authoritative list arrived in between.
package actors
