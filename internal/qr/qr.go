// Package qr renders share URLs as QR codes.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of generated PNGs.
const DefaultSize = 200

// FileName returns the default file name for a code's QR image.
func FileName(code string) string {
	return "qr-" + code + ".png"
}

func size(n int) int {
	if n <= 0 {
		return DefaultSize
	}
	return n
}

// PNG encodes content as a PNG image of the given size.
func PNG(content string, px int) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("qr: empty content")
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size(px))
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return png, nil
}

// WriteFile writes content as a PNG to path, creating parent directories.
func WriteFile(content string, px int, path string) error {
	png, err := PNG(content, px)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("qr: create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("qr: write %s: %w", path, err)
	}
	return nil
}

// Terminal renders content with block characters for display in a terminal.
func Terminal(content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("qr: empty content")
	}
	code, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("qr: encode: %w", err)
	}
	return code.ToString(false), nil
}
