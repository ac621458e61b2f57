package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine runs OCR through the Tesseract C library. A client
// is created per call: recognition is rare (at most once per
// invocation) and a fresh client avoids holding native resources.
type tesseractEngine struct {
	languages []string
}

func (e *tesseractEngine) Text(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("setting languages: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("loading image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}
