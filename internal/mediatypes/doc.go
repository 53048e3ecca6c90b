// Package mediatypes is the table of file extensions the player accepts as
// video and the image formats usable as sidecar posters.
package mediatypes
