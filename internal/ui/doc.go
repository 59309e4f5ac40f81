// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The TUI is the presentation layer of the room supervisor:
//  1. [RoomListView] : Browse open rooms, create one, or join by id
//  2. [RoomView] : A room's tracks, with add, move, delete, leave and export
//  3. [WizardView] : The room creation wizard, one screen per step
//
// An invitation prompt overlays whichever view is active.
//
// [Bridge] implements the supervisor's Navigator, Notifier and Observer interfaces. It queues every call as a [Msg]
// and forwards them in order to the running program, so the supervisor goroutine never waits on rendering.
//
// The [Model] never mutates rooms itself. Keys are translated into [Controller] commands and the screen is redrawn
// from the next published view. A room whose mutation pipeline is busy is rendered with a syncing marker and
// mutation keys are ignored until it is idle again.
package ui
