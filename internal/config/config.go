// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// SceneConfig holds scene manifest and asset settings.
type SceneConfig struct {
	Manifest    string   `yaml:"manifest"`     // Path to the scene manifest (YAML)
	AssetRoots  []string `yaml:"asset_roots"`  // Searched last-to-first for relative asset paths
	StartPaused bool     `yaml:"start_paused"` // Freeze the clock until P is pressed
	Screenshots string   `yaml:"screenshots"`  // Directory F12 captures are written to
}

// CameraConfig holds the initial orbit camera and projection.
type CameraConfig struct {
	Distance float32    `yaml:"distance"` // 0 frames every mesh in the scene
	Target   [3]float32 `yaml:"target"`
	Pitch    float32    `yaml:"pitch"` // radians
	Yaw      float32    `yaml:"yaw"`   // radians
	FOV      float32    `yaml:"fov"`   // vertical, degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Moonscene",
			Width:      1280,
			Height:     960,
			Fullscreen: false,
			VSync:      true,
		},
		Scene: SceneConfig{
			Manifest:    "assets/scene.yaml",
			AssetRoots:  []string{"assets"},
			Screenshots: "screenshots",
		},
		Camera: CameraConfig{
			Pitch: 0.2,
			FOV:   45,
			Near:  0.1,
			Far:   1000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
