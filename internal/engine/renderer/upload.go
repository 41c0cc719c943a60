package renderer

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/engine/texture"
)

// TextureUploader creates GL textures for the texture library and deletes
// them on Close.
type TextureUploader struct {
	ids []uint32
}

// NewTextureUploader creates an uploader for the current GL context.
func NewTextureUploader() *TextureUploader {
	return &TextureUploader{}
}

// Upload2D uploads img as a mipmapped, repeating 2D texture. Rows are
// flipped to match OpenGL's bottom-left origin.
func (u *TextureUploader) Upload2D(img image.Image) (uint32, error) {
	rgba := texture.ToRGBA(img, true)
	size := rgba.Rect.Size()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	u.ids = append(u.ids, id)
	return id, nil
}

// UploadCube uploads six faces in +X, -X, +Y, -Y, +Z, -Z order.
func (u *TextureUploader) UploadCube(faces [resource.CubeFaces]image.Image) (uint32, error) {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	for i, face := range faces {
		rgba := texture.ToRGBA(face, false)
		size := rgba.Rect.Size()
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8,
			int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	}

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	u.ids = append(u.ids, id)
	return id, nil
}

// Close deletes every texture created by the uploader.
func (u *TextureUploader) Close() {
	if len(u.ids) > 0 {
		gl.DeleteTextures(int32(len(u.ids)), &u.ids[0])
		u.ids = nil
	}
}
