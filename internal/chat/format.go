package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MimeCategory is a coarse grouping of mime types used when rendering
// file previews.
type MimeCategory string

const (
	MimeImage MimeCategory = "image"
	MimeAudio MimeCategory = "audio"
	MimeVideo MimeCategory = "video"
	MimeOther MimeCategory = "other"
)

var supportedMimes = map[MimeCategory][]string{
	MimeImage: {
		"image/png", "image/jpeg", "image/gif", "image/webp",
		"image/svg+xml", "image/apng", "image/avif", "image/bmp",
	},
	MimeAudio: {"audio/mpeg", "audio/ogg", "audio/webm", "audio/wav", "audio/aac"},
	MimeVideo: {"video/mp4", "video/webm", "video/ogg"},
}

// CategorizeMime returns the coarse category for a mime type.
func CategorizeMime(mime string) MimeCategory {
	for cat, list := range supportedMimes {
		for _, m := range list {
			if m == mime {
				return cat
			}
		}
	}
	return MimeOther
}

// FormatBytes renders a byte count in human-readable form.
func FormatBytes(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	sizes := []string{"B", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	display := strconv.FormatFloat(value, 'f', 2, 64)
	display = strings.TrimRight(strings.TrimRight(display, "0"), ".")
	return fmt.Sprintf("%s %s", display, sizes[i])
}

// TrimLongText shortens text to maxLen runes with an ellipsis.
func TrimLongText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}
