// Package probe reads a video's stream dimensions with ffprobe.
//
// The rotation engine needs the size a browser decoder will report, which
// is the coded size with the container's display rotation applied.
// [VideoInfo.DisplaySize] performs that swap for streams tagged with a
// quarter-turn rotation, either through the legacy "rotate" tag or a
// Display Matrix side data entry.
//
// Results are cached through the [Cache] interface, keyed on path and
// modification time.
package probe
