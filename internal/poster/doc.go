// Package poster renders still images for the player, rotated by the
// session's current angle so the poster lines up with the rotated video
// element before playback starts.
//
// A sidecar image next to the video (movie.jpg for movie.mp4) is preferred;
// otherwise ffmpeg extracts the frame at one second. Results are fitted to
// 640x640, encoded as JPEG and cached on disk per file version and angle.
//
// CSS rotate() turns clockwise while imaging rotates counter-clockwise, so a
// 90° player angle is rendered with imaging.Rotate270.
package poster
