// Package handlers provides HTTP request handlers for the media player API.
//
// It includes handlers for:
//   - Player sessions and their rotation events
//   - Rotated poster images
//   - Search query normalization
//   - Health checks and version information
//
// Every session endpoint returns the session snapshot: rotation state,
// transform result and the CSS properties that render it.
package handlers
