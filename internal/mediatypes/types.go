package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is what the player can do with a file.
type Kind uint8

const (
	Other Kind = iota
	// Video can be opened in a player session.
	Video
	// Image can stand in as a poster next to a video.
	Image
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Image:
		return "image"
	}
	return "other"
}

// Format is one recognized file extension.
type Format struct {
	Ext  string
	MIME string
	Kind Kind
}

// Images come first, in the order sidecar posters are searched for.
var formats = []Format{
	{".jpg", "image/jpeg", Image},
	{".jpeg", "image/jpeg", Image},
	{".png", "image/png", Image},
	{".webp", "image/webp", Image},

	{".mp4", "video/mp4", Video},
	{".m4v", "video/x-m4v", Video},
	{".mov", "video/quicktime", Video},
	{".webm", "video/webm", Video},
	{".mkv", "video/x-matroska", Video},
	{".avi", "video/x-msvideo", Video},
	{".wmv", "video/x-ms-wmv", Video},
	{".flv", "video/x-flv", Video},
	{".mpeg", "video/mpeg", Video},
	{".mpg", "video/mpeg", Video},
	{".3gp", "video/3gpp", Video},
	{".ts", "video/mp2t", Video},
}

// Lookup finds the format of a file name or bare extension, ignoring case.
func Lookup(name string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range formats {
		if f.Ext == ext {
			return f, true
		}
	}
	return Format{Ext: ext, MIME: "application/octet-stream", Kind: Other}, false
}

// IsVideo reports whether name has a video extension.
func IsVideo(name string) bool {
	f, _ := Lookup(name)
	return f.Kind == Video
}

// PosterExtensions returns the sidecar image extensions in search order.
func PosterExtensions() []string {
	var exts []string
	for _, f := range formats {
		if f.Kind == Image {
			exts = append(exts, f.Ext)
		}
	}
	return exts
}
