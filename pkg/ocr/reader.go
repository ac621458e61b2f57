package ocr

import (
	"log/slog"
	"strings"

	"github.com/mzaitsev/ag/pkg/logger"
)

// Engine recognizes text in raw image bytes.
type Engine interface {
	Text(image []byte) (string, error)
}

type Reader struct {
	engine Engine
}

// NewReader creates a Reader backed by Tesseract with the given
// language codes (for example "chi_sim", "eng").
func NewReader(languages []string) *Reader {
	return &Reader{engine: &tesseractEngine{languages: languages}}
}

// Recognize extracts text from an image. Recognized lines are trimmed,
// empty lines dropped, and the rest joined by newlines. Engine failure
// is not an error to the caller: it is logged and yields an empty
// string, meaning no context is available.
func (r *Reader) Recognize(image []byte) string {
	text, err := r.engine.Text(image)
	if err != nil {
		slog.Error("recognizing image text", logger.Err(err))
		return ""
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
