package packager

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coldstore/internal/services"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildTarIsDeterministic(t *testing.T) {
	files := map[string]string{
		"zeta.txt":      "last alphabetically",
		"alpha.txt":     "first alphabetically",
		"sub/nested.md": "nested",
	}

	treeA := filepath.Join(t.TempDir(), "tree")
	writeTree(t, treeA, files)
	treeB := filepath.Join(t.TempDir(), "tree")
	writeTree(t, treeB, files)

	// Skew every timestamp on the second tree; the archives must still match.
	old := time.Now().Add(-48 * time.Hour)
	if err := filepath.Walk(treeB, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		return os.Chtimes(path, old, old)
	}); err != nil {
		t.Fatal(err)
	}

	tarA := filepath.Join(t.TempDir(), "a.tar")
	tarB := filepath.Join(t.TempDir(), "b.tar")
	if _, err := BuildTar(t.Context(), treeA, tarA); err != nil {
		t.Fatalf("BuildTar A: %v", err)
	}
	if _, err := BuildTar(t.Context(), treeB, tarB); err != nil {
		t.Fatalf("BuildTar B: %v", err)
	}

	bytesA, err := os.ReadFile(tarA)
	if err != nil {
		t.Fatal(err)
	}
	bytesB, err := os.ReadFile(tarB)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bytesA, bytesB) {
		t.Error("identical trees must produce byte-identical archives")
	}
}

func TestBuildTarNormalizesHeaders(t *testing.T) {
	tree := filepath.Join(t.TempDir(), "tree")
	writeTree(t, tree, map[string]string{"b.txt": "b", "a.txt": "a", "dir/c.txt": "c"})

	tarPath := filepath.Join(t.TempDir(), "out.tar")
	if _, err := BuildTar(t.Context(), tree, tarPath); err != nil {
		t.Fatalf("BuildTar: %v", err)
	}

	file, err := os.Open(tarPath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var names []string
	tr := tar.NewReader(file)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read header: %v", err)
		}
		names = append(names, header.Name)
		if header.Uid != 0 || header.Gid != 0 {
			t.Errorf("%s: uid/gid = %d/%d, want 0/0", header.Name, header.Uid, header.Gid)
		}
		if header.Uname != "root" || header.Gname != "root" {
			t.Errorf("%s: uname/gname = %s/%s, want root/root", header.Name, header.Uname, header.Gname)
		}
		if !header.ModTime.Equal(time.Unix(0, 0)) {
			t.Errorf("%s: mtime = %v, want epoch", header.Name, header.ModTime)
		}
	}

	want := []string{"a.txt", "b.txt", "dir/", "dir/c.txt"}
	if len(names) != len(want) {
		t.Fatalf("members = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("member %d = %s, want %s (sorted by relative path)", i, names[i], want[i])
		}
	}
}

func TestPackageValidatesAndCountsMembers(t *testing.T) {
	work := t.TempDir()
	tree := filepath.Join(work, "bundle")
	writeTree(t, tree, map[string]string{"x": "1", "y": "2"})

	packager := NewPackager(nil)
	tarPath, members, err := packager.Package(t.Context(), tree, work)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if tarPath != filepath.Join(work, "bundle.tar") {
		t.Errorf("tarPath = %s", tarPath)
	}
	if members != 2 {
		t.Errorf("members = %d, want 2", members)
	}
}

func TestValidateTarRejectsTruncatedArchive(t *testing.T) {
	work := t.TempDir()
	tree := filepath.Join(work, "bundle")
	writeTree(t, tree, map[string]string{"data.bin": "some file content here"})

	tarPath := filepath.Join(work, "bundle.tar")
	if _, err := BuildTar(t.Context(), tree, tarPath); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(tarPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tarPath, raw[:700], 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateTar(tarPath); err == nil {
		t.Error("truncated archive should fail validation")
	}
}

func TestPackageMissingTreeClassifiesAsPackaging(t *testing.T) {
	work := t.TempDir()
	packager := NewPackager(nil)
	_, _, err := packager.Package(t.Context(), filepath.Join(work, "absent"), work)
	if !errors.Is(err, services.ErrPackaging) {
		t.Errorf("error should classify as packaging, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(work, "absent.tar")); !os.IsNotExist(statErr) {
		t.Error("failed packaging should leave no tar behind")
	}
}
