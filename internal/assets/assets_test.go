package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const triangleOBJ = `o tri
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestManagerRootPriority(t *testing.T) {
	base := t.TempDir()
	mods := t.TempDir()
	writeFile(t, filepath.Join(base, "shaders", "basic.vert"), "base")
	writeFile(t, filepath.Join(mods, "shaders", "basic.vert"), "mods")
	writeFile(t, filepath.Join(base, "shaders", "basic.frag"), "base frag")

	m := NewManager(base)
	if err := m.AddRoot(mods); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}

	data, err := m.Load("shaders/basic.vert")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "mods" {
		t.Errorf("expected last root to win, got %q", data)
	}

	data, err = m.Load("shaders/basic.frag")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != "base frag" {
		t.Errorf("expected fallback to first root, got %q", data)
	}

	if roots := m.Roots(); len(roots) != 2 || roots[1] != mods {
		t.Errorf("expected roots [base mods], got %v", roots)
	}
}

func TestManagerMissing(t *testing.T) {
	m := NewManager(t.TempDir())

	_, err := m.Load("obj/bunny.obj")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	if err := m.AddRoot(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error adding missing root")
	}

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "x")
	if err := m.AddRoot(file); err == nil {
		t.Error("expected error adding file as root")
	}
}

func TestManagerAbsolutePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	writeFile(t, path, triangleOBJ)

	m := NewManager()
	resolved, err := m.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved != path {
		t.Errorf("expected %s, got %s", path, resolved)
	}
}

func TestManagerCaches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "tex.txt")
	writeFile(t, path, "first")

	m := NewManager(root)
	if _, err := m.Load("tex.txt"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, "second")

	data, err := m.Load("tex.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("expected cached contents, got %q", data)
	}

	hits, misses := m.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}

	m.Close()
	data, _ = m.Load("tex.txt")
	if string(data) != "second" {
		t.Errorf("expected fresh contents after Close, got %q", data)
	}
}

func TestLoadMeshes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "obj", "tri.obj"), triangleOBJ)
	writeFile(t, filepath.Join(root, "obj", "empty.obj"), "# nothing\nv 0 0 0\n")

	m := NewManager(root)
	meshes, err := m.LoadMeshes("obj/tri.obj")
	if err != nil {
		t.Fatalf("LoadMeshes failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if meshes[0].VertexCount() != 3 || meshes[0].TriangleCount() != 1 {
		t.Errorf("expected 3 vertices and 1 triangle, got %d and %d",
			meshes[0].VertexCount(), meshes[0].TriangleCount())
	}

	meshes, err = m.LoadMeshes("obj/empty.obj")
	if err != nil {
		t.Fatalf("LoadMeshes failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected 0 meshes for faceless file, got %d", len(meshes))
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	c.Set("a", []byte("1"))
	if _, ok := c.Get("a"); !ok {
		t.Error("expected hit")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("expected miss")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
	c.Clear()
	if hits, misses := c.Stats(); hits != 0 || misses != 0 || c.Len() != 0 {
		t.Errorf("expected empty stats after Clear, got %d %d %d", hits, misses, c.Len())
	}
}
