// Package services talks to the HTTP side of the room server.
//
// # Track metadata
//
// The creation wizard shows metadata for the tracks a new room starts with. [TrackService] is that collaborator;
// [TracksAPI] implements it over the server's REST API and the repositories package adds a sqlite cache in front.
//
// # Authentication
//
// [TokenSource] builds an [oauth2.TokenSource] from the credentials section of the config, either a static bearer
// token or the client-credentials flow. [NewAuthenticatedClient] wraps it into an [http.Client] that refreshes tokens
// automatically. The same token source authorizes the WebSocket dial in the transport package.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : no usable credentials configured
//   - [shared.ErrAPIRequest] : non-2xx response or undecodable body
//   - [shared.ErrServiceUnavailable] : the request could not be sent
package services
