package resource

import (
	"errors"
	"image"
	"strings"
)

// HeadlessCompiler accepts any pair of sources that both define main and
// hands out sequential program ids. It lets scenes be validated without a
// GL context.
type HeadlessCompiler struct {
	next uint32
}

// CompileProgram implements Compiler.
func (c *HeadlessCompiler) CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if !strings.Contains(vertexSrc, "main") {
		return 0, errors.New("vertex shader: no main function")
	}
	if !strings.Contains(fragmentSrc, "main") {
		return 0, errors.New("fragment shader: no main function")
	}
	c.next++
	return c.next, nil
}

// HeadlessUploader keeps nothing and hands out sequential texture ids.
type HeadlessUploader struct {
	next uint32
}

// Upload2D implements Uploader.
func (u *HeadlessUploader) Upload2D(img image.Image) (uint32, error) {
	if img.Bounds().Empty() {
		return 0, errors.New("empty image")
	}
	u.next++
	return u.next, nil
}

// UploadCube implements Uploader.
func (u *HeadlessUploader) UploadCube(faces [CubeFaces]image.Image) (uint32, error) {
	for _, f := range faces {
		if f == nil || f.Bounds().Empty() {
			return 0, errors.New("empty cube face")
		}
	}
	u.next++
	return u.next, nil
}
