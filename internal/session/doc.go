// Package session keeps one rotation controller per open player.
//
// The browser creates a session when a video element mounts and then
// pushes the notifications the rotation engine consumes: the video's
// intrinsic size once metadata loads, fullscreen changes, container
// resizes and user clicks. Each push returns a [Snapshot] holding the
// controller state and the transform to apply.
//
// Calls into a [Session] are serialized by a mutex, so concurrent HTTP
// requests for the same player never interleave transitions. Sessions
// idle for longer than the configured TTL are closed by [Manager.Sweep],
// which releases the controller's metadata subscription.
//
// When a session is created with a file path and the browser has not
// reported a size yet, the manager probes the file in the background and
// delivers the size as a metadata-loaded notification.
package session
