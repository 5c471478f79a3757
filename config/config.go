package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the vellum configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "vellum")
}

// CommonFile returns the path to the common (cross-character) settings file.
func CommonFile() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// CharacterFile returns the path to a character-specific settings overlay.
func CharacterFile(character string) string {
	return filepath.Join(Dir(), "characters", character+".yaml")
}

// CertFile returns the path to the pinned TLS certificate for direct-mode auth.
func CertFile() string {
	return filepath.Join(Dir(), "simu.pem")
}

// LayoutsDir returns the directory layout files are stored under.
func LayoutsDir() string {
	return filepath.Join(Dir(), "layouts")
}

// RawLogDir returns the directory raw session logs are written to.
func RawLogDir() string {
	return filepath.Join(Dir(), "logs")
}
