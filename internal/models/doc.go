// Package models defines the data shared by every layer of the room synchronization client.
//
// The package contains three groups of types:
//
// 1. Room state mirrored from the server
//   - [Room] : the client-side copy of a collaborative playlist
//   - [Track] : a track entry, identified by id
//   - [RoomPatch] : a partial authoritative snapshot merged into a [Room]
//   - [RoomSummary] : the light reference carried by invitations and disconnections
//
// 2. Local intent
//   - [PendingMutation] : the single in-flight edit of a room
//   - [CreationDraft] and [CreationParams] : room creation input
//   - [MtvExportOptions] : options for exporting a room to the voting variant
//
// 3. Presentation contracts
//   - [WizardStep] and [Notification] : values handed to the presentation layer
package models
