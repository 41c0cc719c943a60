// scenetool is a CLI utility for checking and running scene manifests
// without a display.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Faultbox/moonscene/internal/assets"
	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/engine/scene"
	"github.com/Faultbox/moonscene/internal/logger"
	"github.com/Faultbox/moonscene/internal/manifest"
	"github.com/Faultbox/moonscene/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		cmdCheck(args)
	case "mesh":
		cmdMesh(args)
	case "run":
		cmdRun(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - moonscene manifest utility

Usage:
  scenetool <command> [options]

Commands:
  check [-assets dirs] <scene.yaml>           Build the scene headlessly and report its contents
  mesh <file.obj>                             Show mesh statistics
  run [-assets dirs] [-dt ms] <scene.yaml> [ticks]
                                              Tick the scene and print per-frame state

Examples:
  scenetool check assets/scene.yaml
  scenetool mesh assets/obj/plane.obj
  scenetool run -dt 16 assets/scene.yaml 10`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// headlessScene builds path against a headless backend and a manual clock.
func headlessScene(path, roots string, debug bool) (*scene.Registry, *scene.HeadlessBackend, *scene.ManualClock, *manifest.Built) {
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fail("%v", err)
	}

	m, err := manifest.Load(path)
	if err != nil {
		fail("%v", err)
	}

	mgr := assets.NewManager()
	if roots == "" {
		roots = filepath.Dir(path)
	}
	for _, root := range strings.Split(roots, ",") {
		if root = strings.TrimSpace(root); root == "" {
			continue
		}
		if err := mgr.AddRoot(root); err != nil {
			fail("%v", err)
		}
	}

	backend := scene.NewHeadlessBackend(1280, 960)
	clock := &scene.ManualClock{}
	registry := scene.NewRegistry(backend, clock)
	builder := &manifest.Builder{
		Shaders:  resource.NewShaderLibrary(&resource.HeadlessCompiler{}, mgr.Load),
		Textures: resource.NewTextureLibrary(&resource.HeadlessUploader{}, mgr.Load),
		Registry: registry,
		Loader:   mgr,
	}
	built, err := builder.Apply(m)
	if err != nil {
		fail("%v", err)
	}
	return registry, backend, clock, built
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	roots := fs.String("assets", "", "Comma-separated asset roots (default: manifest directory)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool check [-assets dirs] <scene.yaml>")
		os.Exit(1)
	}

	registry, backend, _, built := headlessScene(fs.Arg(0), *roots, *debug)

	fmt.Printf("Scene:    %s\n", fs.Arg(0))
	fmt.Printf("Objects:  %d\n", registry.Len())
	fmt.Printf("Lights:   %d\n", len(backend.Lights()))
	fmt.Println()

	kinds := make(map[scene.Kind]int)
	for _, h := range registry.Handles() {
		if obj, ok := backend.Resolve(h); ok {
			kinds[obj.Kind()]++
		}
	}
	fmt.Println("Objects by kind:")
	for _, k := range []scene.Kind{scene.KindGradient, scene.KindBackground, scene.KindSkybox, scene.KindMesh} {
		if kinds[k] > 0 {
			fmt.Printf("  %-12s %d\n", k, kinds[k])
		}
	}

	if len(built.Objects) > 0 {
		fmt.Println()
		fmt.Println("Meshes:")
		names := make(map[*scene.MeshObject]string, len(built.ByName))
		for name, obj := range built.ByName {
			names[obj] = name
		}
		for i, obj := range built.Objects {
			name := names[obj]
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			s, _ := obj.Shader()
			fmt.Printf("  %-16s %6d tris  shader=%-10s textures=%d alpha=%v %s/%s\n",
				name, obj.Mesh().TriangleCount(), s.Name, len(obj.Textures()), obj.HasAlpha(),
				obj.PolygonMode(), obj.ShadingMode())
		}
	}
	fmt.Println()
	fmt.Println("OK")
}

func cmdMesh(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool mesh <file.obj>")
		os.Exit(1)
	}

	obj, err := formats.ParseOBJFile(args[0])
	if err != nil {
		fail("%v", err)
	}
	meshes := obj.DiscreteTriangles()

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Positions:  %d\n", len(obj.Positions))
	fmt.Printf("Normals:    %d\n", len(obj.Normals))
	fmt.Printf("TexCoords:  %d\n", len(obj.TexCoords))
	fmt.Printf("Shapes:     %d (%d with faces)\n", len(obj.Shapes), len(meshes))

	if len(obj.Skipped) > 0 {
		var keys []string
		for k := range obj.Skipped {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println()
		fmt.Println("Skipped statements:")
		for _, k := range keys {
			fmt.Printf("  %-10s %d\n", k, obj.Skipped[k])
		}
	}

	if len(meshes) == 0 {
		fmt.Println()
		fmt.Println("No meshes: this file cannot be used as a scene object")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Meshes:")
	for i, m := range meshes {
		lo, hi := m.Bounds()
		status := "ok"
		if err := m.Validate(); err != nil {
			status = err.Error()
		}
		marker := " "
		if i == 0 {
			marker = "*" // the mesh a scene object uses
		}
		fmt.Printf(" %s %-16s %6d verts %6d tris  uvs=%-5v bounds=[%.2f %.2f %.2f]..[%.2f %.2f %.2f]  %s\n",
			marker, m.Name, m.VertexCount(), m.TriangleCount(), m.HasUVs(),
			lo[0], lo[1], lo[2], hi[0], hi[1], hi[2], status)
	}
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	roots := fs.String("assets", "", "Comma-separated asset roots (default: manifest directory)")
	dtMS := fs.Int("dt", 16, "Synthetic milliseconds between ticks")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool run [-assets dirs] [-dt ms] <scene.yaml> [ticks]")
		os.Exit(1)
	}
	ticks := 10
	if fs.NArg() > 1 {
		n, err := strconv.Atoi(fs.Arg(1))
		if err != nil || n < 0 {
			fail("invalid tick count %q", fs.Arg(1))
		}
		ticks = n
	}

	registry, backend, clock, built := headlessScene(fs.Arg(0), *roots, *debug)
	if err := registry.Start(); err != nil {
		fail("%v", err)
	}

	dt := time.Duration(*dtMS) * time.Millisecond
	fmt.Printf("%6s %10s %8s\n", "tick", "time", "bgframe")
	for i := 0; i < ticks; i++ {
		clock.Advance(dt)
		if err := registry.Tick(); err != nil {
			fail("tick %d: %v", i, err)
		}
		bgFrame := "-"
		if built.Background != nil {
			bgFrame = strconv.Itoa(built.Background.State().Frame)
		}
		fmt.Printf("%6d %9.3fs %8s\n", registry.Frame(), registry.LastTime(), bgFrame)
	}
	fmt.Printf("\nDraws: %d\n", backend.Draws())
}
