package qr

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPNG(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int
	}{
		{"default", 0, DefaultSize},
		{"custom", 320, 320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := PNG("https://localhost:8888/gateway/urls/redirect/abc", tt.size)
			if err != nil {
				t.Fatalf("PNG: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if w := img.Bounds().Dx(); w != tt.want {
				t.Errorf("width = %d, want %d", w, tt.want)
			}
		})
	}
}

func TestPNG_Empty(t *testing.T) {
	if _, err := PNG("", 0); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", FileName("abc"))
	if err := WriteFile("https://sho.rt/abc", 0, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("file is not a PNG")
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("https://sho.rt/abc")
	if err != nil {
		t.Fatalf("Terminal: %v", err)
	}
	if len(strings.Split(strings.TrimRight(out, "\n"), "\n")) < 10 {
		t.Errorf("rendering too small:\n%s", out)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("promo"); got != "qr-promo.png" {
		t.Errorf("FileName = %q", got)
	}
}
