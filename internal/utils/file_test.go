package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"selfie.jpg", "jpg"},
		{"selfie.JPEG", "jpeg"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".hidden", "hidden"},
	}
	for _, c := range cases {
		if got := GetFileExtension(c.filename); got != c.want {
			t.Errorf("GetFileExtension(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"face.jpg", true},
		{"face.PNG", true},
		{"face.webp", true},
		{"notes.txt", false},
		{"script.sh", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsImageFile(c.filename); got != c.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", c.filename, got, c.want)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "result.jpg")
	if FileExists(path) {
		t.Error("expected missing file to not exist")
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("expected written file to exist")
	}
	if FileExists(dir) {
		t.Error("directories should not count as files")
	}
}

func TestResultFilename(t *testing.T) {
	path := ResultFilename("out", "user-1", "smoky-eyes")
	if dir := filepath.Dir(path); dir != "out" {
		t.Errorf("expected output dir %q, got %q", "out", dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "user-1_smoky-eyes_") || !strings.HasSuffix(base, ".jpg") {
		t.Errorf("unexpected result filename %q", base)
	}
}
