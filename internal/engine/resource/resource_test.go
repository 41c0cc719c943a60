package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

const (
	testVert = "void main() { gl_Position = vec4(0); }"
	testFrag = "out vec4 c; void main() { c = vec4(1); }"
)

func encodePNG(t *testing.T, w, h int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func memReader(files map[string][]byte) ReadFunc {
	return func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
		}
		return data, nil
	}
}

func TestShaderLibraryGetMissing(t *testing.T) {
	lib := NewShaderLibrary(&HeadlessCompiler{}, nil)

	s, err := lib.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing shader, got nil")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if nf.Kind != "shader" || nf.Name != "nonexistent" {
		t.Errorf("expected shader/nonexistent, got %s/%s", nf.Kind, nf.Name)
	}
	if s != (Shader{}) {
		t.Errorf("expected zero shader, got %+v", s)
	}
}

func TestShaderLibraryAddAndGet(t *testing.T) {
	lib := NewShaderLibrary(&HeadlessCompiler{}, nil)

	if err := lib.Add(testVert, testFrag, "basic"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := lib.Add(testVert, testFrag, "stars"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s, err := lib.Get("stars")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Name != "stars" || s.Program != 2 {
		t.Errorf("expected stars/2, got %s/%d", s.Name, s.Program)
	}

	names := lib.Names()
	if len(names) != 2 || names[0] != "basic" || names[1] != "stars" {
		t.Errorf("expected [basic stars], got %v", names)
	}
}

func TestShaderLibraryAddErrors(t *testing.T) {
	lib := NewShaderLibrary(&HeadlessCompiler{}, nil)
	if err := lib.Add(testVert, testFrag, "basic"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := lib.Add(testVert, testFrag, "basic"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if err := lib.Add("", testFrag, "broken"); err == nil {
		t.Error("expected compile error for empty vertex source")
	}
	if _, err := lib.Get("broken"); !IsNotFound(err) {
		t.Errorf("expected failed shader to stay unregistered, got %v", err)
	}

	lib.Seal()
	if err := lib.Add(testVert, testFrag, "late"); !errors.Is(err, ErrSealed) {
		t.Errorf("expected ErrSealed, got %v", err)
	}
	if lib.Len() != 1 {
		t.Errorf("expected 1 shader, got %d", lib.Len())
	}
}

func TestShaderLibraryAddFromFiles(t *testing.T) {
	dir := t.TempDir()
	vertPath := filepath.Join(dir, "basic.vert")
	fragPath := filepath.Join(dir, "basic.frag")
	if err := os.WriteFile(vertPath, []byte(testVert), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fragPath, []byte(testFrag), 0644); err != nil {
		t.Fatal(err)
	}

	lib := NewShaderLibrary(&HeadlessCompiler{}, nil)
	if err := lib.AddFromFiles(vertPath, fragPath, "basic"); err != nil {
		t.Fatalf("AddFromFiles failed: %v", err)
	}
	if _, err := lib.Get("basic"); err != nil {
		t.Errorf("expected basic to be registered, got %v", err)
	}

	err := lib.AddFromFiles(vertPath, filepath.Join(dir, "missing.frag"), "env")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestTextureLibraryAdd(t *testing.T) {
	files := map[string][]byte{
		"tex/earth.png":  encodePNG(t, 4, 2, 255),
		"tex/window.png": encodePNG(t, 2, 2, 100),
	}
	lib := NewTextureLibrary(&HeadlessUploader{}, memReader(files))

	if err := lib.Add("tex/earth.png", "sphere_color"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := lib.Add("tex/window.png", "window_color"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	earth, err := lib.Get("sphere_color")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if earth.Target != Target2D || earth.Width != 4 || earth.Height != 2 {
		t.Errorf("expected 2d 4x2, got %s %dx%d", earth.Target, earth.Width, earth.Height)
	}
	if earth.HasAlpha {
		t.Error("expected opaque texture to have no alpha")
	}

	window, _ := lib.Get("window_color")
	if !window.HasAlpha {
		t.Error("expected translucent texture to have alpha")
	}
	if window.ID == earth.ID {
		t.Errorf("expected distinct ids, both %d", window.ID)
	}
}

func TestTextureLibraryErrors(t *testing.T) {
	files := map[string][]byte{
		"ok.png":  encodePNG(t, 1, 1, 255),
		"bad.png": []byte("garbage"),
	}
	lib := NewTextureLibrary(&HeadlessUploader{}, memReader(files))

	if err := lib.Add("missing.png", "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
	if err := lib.Add("bad.png", "bad"); err == nil {
		t.Error("expected decode error, got nil")
	}
	if err := lib.Add("ok.png", "ok"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := lib.Add("ok.png", "ok"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if _, err := lib.Get("bad"); !IsNotFound(err) {
		t.Errorf("expected NotFoundError for failed texture, got %v", err)
	}

	lib.Seal()
	if err := lib.Add("ok.png", "later"); !errors.Is(err, ErrSealed) {
		t.Errorf("expected ErrSealed, got %v", err)
	}
}

func TestTextureLibraryCubeMap(t *testing.T) {
	faces := []string{"posx.png", "negx.png", "posy.png", "negy.png", "posz.png", "negz.png"}
	files := make(map[string][]byte)
	for _, f := range faces {
		files[f] = encodePNG(t, 8, 8, 255)
	}
	files["wide.png"] = encodePNG(t, 8, 4, 255)
	files["small.png"] = encodePNG(t, 4, 4, 255)

	lib := NewTextureLibrary(&HeadlessUploader{}, memReader(files))
	if err := lib.AddCubeMap(faces, "cube_map"); err != nil {
		t.Fatalf("AddCubeMap failed: %v", err)
	}
	cube, err := lib.Get("cube_map")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cube.Target != TargetCube || cube.Width != 8 {
		t.Errorf("expected cube 8, got %s %d", cube.Target, cube.Width)
	}

	tests := []struct {
		name  string
		files []string
	}{
		{"five faces", faces[:5]},
		{"not square", append(append([]string{}, faces[:5]...), "wide.png")},
		{"size mismatch", append(append([]string{}, faces[:5]...), "small.png")},
		{"missing face", append(append([]string{}, faces[:5]...), "nope.png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := lib.AddCubeMap(tt.files, "cube_"+tt.name); err == nil {
				t.Error("expected error, got nil")
			}
			if _, err := lib.Get("cube_" + tt.name); !IsNotFound(err) {
				t.Errorf("expected nothing registered, got %v", err)
			}
		})
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{Kind: "texture", Name: "buzz_color"}
	want := `texture "buzz_color" not found`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
	if !IsNotFound(fmt.Errorf("binding: %w", err)) {
		t.Error("expected IsNotFound to see through wrapping")
	}
}
