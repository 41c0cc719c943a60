package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/engine/scene"
	"github.com/Faultbox/moonscene/internal/engine/shader"
)

type alphaObject interface {
	HasAlpha() bool
}

// Draw clears the framebuffer and submits every live object in insertion
// order.
func (r *Renderer) Draw() error {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	var drawErr error
	r.arena.Each(func(h scene.Handle, obj scene.Object) {
		if drawErr != nil {
			return
		}
		if err := r.drawObject(h, obj); err != nil {
			drawErr = fmt.Errorf("draw %s: %w", obj.Kind(), err)
		}
	})
	return drawErr
}

func (r *Renderer) drawObject(h scene.Handle, obj scene.Object) error {
	switch o := obj.(type) {
	case *scene.MeshObject:
		return r.drawMesh(h, o)
	case *scene.BackgroundEffect:
		r.drawBackground(o)
	case *scene.GradientBackground:
		r.drawGradient(o)
	case *scene.Skybox:
		r.drawSkybox(o)
	}
	return nil
}

func (r *Renderer) drawMesh(h scene.Handle, m *scene.MeshObject) error {
	if m.DataRefreshed() {
		if err := r.uploadMesh(h, m); err != nil {
			return err
		}
		m.ClearDataRefreshed()
		r.log.Debug("mesh buffers rebuilt", zap.Int("triangles", m.Mesh().TriangleCount()))
	}
	b, ok := r.meshes[h]
	if !ok {
		return nil
	}
	s, ok := m.Shader()
	if !ok {
		return nil
	}

	p := r.programFor(s.Program)
	p.Use()
	p.SetMat4("model", m.ModelMatrix())
	p.SetMat4("view", r.view)
	p.SetMat4("projection", r.projection)
	p.SetVec3("viewPos", r.eye)
	p.SetFloat("iTime", m.Time())

	mat := m.Material()
	p.SetVec3("material.ka", mat.Ka)
	p.SetVec3("material.kd", mat.Kd)
	p.SetVec3("material.ks", mat.Ks)
	p.SetFloat("material.shininess", mat.Shininess)
	p.SetInt("shadingMode", int32(m.ShadingMode()))
	r.setLights(p)
	bindTextures(p, m.Textures())

	blend := m.ShadingMode() == scene.ShadingTexAlpha && m.HasAlpha()
	if blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, polygonMode(m.PolygonMode()))

	b.draw()

	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	if blend {
		gl.Disable(gl.BLEND)
	}
	return nil
}

func (r *Renderer) drawBackground(bg *scene.BackgroundEffect) {
	s, ok := bg.Shader()
	if !ok || r.quad == nil {
		return
	}
	st := bg.State()
	p := r.programFor(s.Program)
	p.Use()
	p.SetFloat("iTime", st.Time)
	p.SetVec2("iResolution", mgl32.Vec2{st.Width, st.Height})
	p.SetInt("iFrame", int32(st.Frame))
	bindTextures(p, bg.Textures())
	r.drawBackdrop(bg)
}

func (r *Renderer) drawGradient(g *scene.GradientBackground) {
	if r.quad == nil {
		return
	}
	p := r.gradient
	if s, ok := g.Shader(); ok {
		p = r.programFor(s.Program)
	}
	if p == nil {
		return
	}
	p.Use()
	top, bottom := g.Colors()
	p.SetVec4("topColor", top)
	p.SetVec4("bottomColor", bottom)
	r.drawBackdrop(g)
}

// drawBackdrop draws the screen quad behind everything without writing depth.
func (r *Renderer) drawBackdrop(obj alphaObject) {
	blend := obj.HasAlpha()
	if blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.DepthMask(false)
	r.quad.draw()
	gl.DepthMask(true)
	if blend {
		gl.Disable(gl.BLEND)
	}
}

func (r *Renderer) drawSkybox(sky *scene.Skybox) {
	s, ok := sky.Shader()
	if !ok || r.cube == nil {
		return
	}
	p := r.programFor(s.Program)
	p.Use()
	// Drop the translation so the box stays centred on the camera.
	view := r.view.Mat3().Mat4()
	p.SetMat4("view", view)
	p.SetMat4("projection", r.projection)
	p.SetFloat("iTime", sky.Time())
	bindTextures(p, sky.Textures())

	gl.DepthMask(false)
	r.cube.draw()
	gl.DepthMask(true)
}

func (r *Renderer) setLights(p *shader.Program) {
	lights := r.lights.Lights()
	p.SetInt("lightCount", int32(len(lights)))
	for i, l := range lights {
		prefix := fmt.Sprintf("lights[%d].", i)
		p.SetVec3(prefix+"position", l.Position)
		p.SetVec3(prefix+"ambient", l.Ambient)
		p.SetVec3(prefix+"diffuse", l.Diffuse)
		p.SetVec3(prefix+"specular", l.Specular)
	}
}

// bindTextures assigns texture units in binding order.
func bindTextures(p *shader.Program, bindings []scene.TextureBinding) {
	for i, b := range bindings {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(textureTarget(b.Texture.Target), b.Texture.ID)
		p.SetInt(b.Sampler, int32(i))
	}
}

func textureTarget(t resource.Target) uint32 {
	if t == resource.TargetCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func polygonMode(m scene.PolygonMode) uint32 {
	switch m {
	case scene.PolygonLine:
		return gl.LINE
	case scene.PolygonPoint:
		return gl.POINT
	default:
		return gl.FILL
	}
}
