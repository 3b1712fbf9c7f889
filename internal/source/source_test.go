package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBaseNameStripsArchiveExtensions(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photos-2019.7z", "photos-2019"},
		{"backup.tar.gz", "backup"},
		{"backup.TGZ", "backup"},
		{"notes.tar.bz2", "notes"},
		{"data.txz", "data"},
		{"/srv/in/project.zip", "project"},
		{"plain.bin", "plain.bin"},
		{"archive.tar", "archive"},
	}
	for _, tc := range cases {
		if got := BaseName(tc.path); got != tc.want {
			t.Errorf("BaseName(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestIsSupportedRejectsBareExtension(t *testing.T) {
	if IsSupported(".7z") {
		t.Error("a name that is only an extension should not be supported")
	}
	if !IsSupported("a.7z") {
		t.Error("a.7z should be supported")
	}
}

func TestResolveRejectsDirectoryAndUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(dir); err == nil {
		t.Error("directories should be rejected")
	}

	plain := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(plain); err == nil {
		t.Error("unsupported format should be rejected")
	}
}

func TestDiscoverSkipsZeroByteAndNonArchives(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, size int) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("b.7z", 10)
	write("a.zip", 5)
	write("empty.7z", 0)
	write("notes.txt", 3)
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(filepath.Join("nested", "deep.7z"), 4)

	archives, skipped, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(archives) != 2 {
		t.Fatalf("archives = %v, want a.zip and b.7z only", archives)
	}
	if filepath.Base(archives[0].Path) != "a.zip" || filepath.Base(archives[1].Path) != "b.7z" {
		t.Errorf("archives should be sorted by path: %v", archives)
	}
	if len(skipped) != 1 || skipped[0].Reason != "zero-byte file" {
		t.Errorf("skipped = %+v, want one zero-byte entry", skipped)
	}
}
