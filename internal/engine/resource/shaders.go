package resource

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/logger"
)

// Shader is a compiled program registered under a name.
type Shader struct {
	Name    string
	Program uint32
}

// Compiler links vertex and fragment sources into a program id.
type Compiler interface {
	CompileProgram(vertexSrc, fragmentSrc string) (uint32, error)
}

// ShaderLibrary maps names to compiled programs.
type ShaderLibrary struct {
	compiler Compiler
	read     ReadFunc
	shaders  map[string]Shader
	order    []string
	sealed   bool
	log      *zap.Logger
}

// NewShaderLibrary creates an empty library. A nil read uses os.ReadFile.
func NewShaderLibrary(compiler Compiler, read ReadFunc) *ShaderLibrary {
	return &ShaderLibrary{
		compiler: compiler,
		read:     readerOrDefault(read),
		shaders:  make(map[string]Shader),
		log:      logger.Named("shaders"),
	}
}

// Add compiles the given sources and registers the program as name.
func (l *ShaderLibrary) Add(vertexSrc, fragmentSrc, name string) error {
	if l.sealed {
		return fmt.Errorf("adding shader %q: %w", name, ErrSealed)
	}
	if _, ok := l.shaders[name]; ok {
		return fmt.Errorf("adding shader %q: %w", name, ErrDuplicate)
	}

	program, err := l.compiler.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return fmt.Errorf("compiling shader %q: %w", name, err)
	}

	l.shaders[name] = Shader{Name: name, Program: program}
	l.order = append(l.order, name)
	l.log.Debug("shader added", zap.String("name", name), zap.Uint32("program", program))
	return nil
}

// AddFromFiles reads both stages from disk and registers them as name.
func (l *ShaderLibrary) AddFromFiles(vertexPath, fragmentPath, name string) error {
	vert, err := l.read(vertexPath)
	if err != nil {
		return fmt.Errorf("reading vertex shader %s: %w", vertexPath, err)
	}
	frag, err := l.read(fragmentPath)
	if err != nil {
		return fmt.Errorf("reading fragment shader %s: %w", fragmentPath, err)
	}
	return l.Add(string(vert), string(frag), name)
}

// Get returns the program registered as name.
func (l *ShaderLibrary) Get(name string) (Shader, error) {
	s, ok := l.shaders[name]
	if !ok {
		return Shader{}, &NotFoundError{Kind: "shader", Name: name}
	}
	return s, nil
}

// Names returns registered names in insertion order.
func (l *ShaderLibrary) Names() []string {
	return append([]string(nil), l.order...)
}

// Len returns the number of registered shaders.
func (l *ShaderLibrary) Len() int {
	return len(l.shaders)
}

// Seal makes the library read-only.
func (l *ShaderLibrary) Seal() {
	l.sealed = true
}

// Sealed reports whether Seal was called.
func (l *ShaderLibrary) Sealed() bool {
	return l.sealed
}
