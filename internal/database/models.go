package database

import "time"

// VideoDimensions is the cached result of probing one video file.
type VideoDimensions struct {
	Path     string    `json:"path"`
	ModTime  time.Time `json:"modTime"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Rotation int       `json:"rotation"`
	Codec    string    `json:"codec"`
	Duration float64   `json:"duration"`
	ProbedAt time.Time `json:"probedAt"`
}
