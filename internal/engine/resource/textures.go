package resource

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/engine/texture"
	"github.com/Faultbox/moonscene/internal/logger"
)

// CubeFaces is the number of images in a cube map, ordered
// +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

// Target distinguishes 2D textures from cube maps.
type Target int

const (
	Target2D Target = iota
	TargetCube
)

func (t Target) String() string {
	if t == TargetCube {
		return "cube"
	}
	return "2d"
}

// Texture is an uploaded image registered under a name.
type Texture struct {
	Name     string
	ID       uint32
	Target   Target
	Width    int
	Height   int
	HasAlpha bool // any pixel not fully opaque; enables blending
}

// Uploader sends decoded images to the GPU and returns their ids.
type Uploader interface {
	Upload2D(img image.Image) (uint32, error)
	UploadCube(faces [CubeFaces]image.Image) (uint32, error)
}

// TextureLibrary maps names to uploaded textures.
type TextureLibrary struct {
	uploader Uploader
	read     ReadFunc
	textures map[string]Texture
	order    []string
	sealed   bool
	log      *zap.Logger
}

// NewTextureLibrary creates an empty library. A nil read uses os.ReadFile.
func NewTextureLibrary(uploader Uploader, read ReadFunc) *TextureLibrary {
	return &TextureLibrary{
		uploader: uploader,
		read:     readerOrDefault(read),
		textures: make(map[string]Texture),
		log:      logger.Named("textures"),
	}
}

func (l *TextureLibrary) checkAdd(name string) error {
	if l.sealed {
		return fmt.Errorf("adding texture %q: %w", name, ErrSealed)
	}
	if _, ok := l.textures[name]; ok {
		return fmt.Errorf("adding texture %q: %w", name, ErrDuplicate)
	}
	return nil
}

func (l *TextureLibrary) load(file string) (image.Image, error) {
	data, err := l.read(file)
	if err != nil {
		return nil, fmt.Errorf("reading texture %s: %w", file, err)
	}
	return texture.Decode(data, file)
}

// Add decodes file and registers it as a 2D texture called name.
func (l *TextureLibrary) Add(file, name string) error {
	if err := l.checkAdd(name); err != nil {
		return err
	}

	img, err := l.load(file)
	if err != nil {
		return err
	}
	id, err := l.uploader.Upload2D(img)
	if err != nil {
		return fmt.Errorf("uploading texture %q: %w", name, err)
	}

	b := img.Bounds()
	l.register(Texture{
		Name:     name,
		ID:       id,
		Target:   Target2D,
		Width:    b.Dx(),
		Height:   b.Dy(),
		HasAlpha: texture.HasAlpha(img),
	})
	return nil
}

// AddCubeMap decodes six face images and registers them as a cube map.
// All faces must be square and the same size.
func (l *TextureLibrary) AddCubeMap(files []string, name string) error {
	if err := l.checkAdd(name); err != nil {
		return err
	}
	if len(files) != CubeFaces {
		return fmt.Errorf("cube map %q: expected %d faces, got %d", name, CubeFaces, len(files))
	}

	var faces [CubeFaces]image.Image
	for i, file := range files {
		img, err := l.load(file)
		if err != nil {
			return fmt.Errorf("cube map %q: %w", name, err)
		}
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return fmt.Errorf("cube map %q: face %s is %dx%d, not square", name, file, b.Dx(), b.Dy())
		}
		if i > 0 && b.Size() != faces[0].Bounds().Size() {
			return fmt.Errorf("cube map %q: face %s size differs from %s", name, file, files[0])
		}
		faces[i] = img
	}

	id, err := l.uploader.UploadCube(faces)
	if err != nil {
		return fmt.Errorf("uploading cube map %q: %w", name, err)
	}

	size := faces[0].Bounds().Dx()
	l.register(Texture{Name: name, ID: id, Target: TargetCube, Width: size, Height: size})
	return nil
}

func (l *TextureLibrary) register(t Texture) {
	l.textures[t.Name] = t
	l.order = append(l.order, t.Name)
	l.log.Debug("texture added",
		zap.String("name", t.Name),
		zap.Stringer("target", t.Target),
		zap.Int("width", t.Width),
		zap.Int("height", t.Height),
		zap.Bool("alpha", t.HasAlpha))
}

// Get returns the texture registered as name.
func (l *TextureLibrary) Get(name string) (Texture, error) {
	t, ok := l.textures[name]
	if !ok {
		return Texture{}, &NotFoundError{Kind: "texture", Name: name}
	}
	return t, nil
}

// Names returns registered names in insertion order.
func (l *TextureLibrary) Names() []string {
	return append([]string(nil), l.order...)
}

// Len returns the number of registered textures.
func (l *TextureLibrary) Len() int {
	return len(l.textures)
}

// Seal makes the library read-only.
func (l *TextureLibrary) Seal() {
	l.sealed = true
}

// Sealed reports whether Seal was called.
func (l *TextureLibrary) Sealed() bool {
	return l.sealed
}
