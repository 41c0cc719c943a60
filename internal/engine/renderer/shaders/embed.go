// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// GradientVertexShader positions the full-screen quad used by gradient
// backdrops.
//
//go:embed gradient.vert
var GradientVertexShader string

// GradientFragmentShader blends the gradient's top and bottom colours.
//
//go:embed gradient.frag
var GradientFragmentShader string
