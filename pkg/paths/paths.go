package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const EnvBuddyDataDir = "BUDDY_DATA_DIR"

// DataDirName is the name of the private data directory inside a profile dir.
const DataDirName = ".buddy"

// DataDir returns the private data directory for a profile directory.
// The EnvBuddyDataDir override wins when set; relative overrides are
// anchored at the profile dir.
func DataDir(profileDir string) string {
	if dir := strings.TrimSpace(os.Getenv(EnvBuddyDataDir)); dir != "" {
		dir = filepath.Clean(expandHomePath(dir))
		if filepath.IsAbs(dir) || strings.TrimSpace(profileDir) == "" {
			return dir
		}
		return filepath.Join(profileDir, dir)
	}
	return filepath.Join(profileDir, DataDirName)
}

// FilesDir returns the directory holding generated bundle artifacts.
func FilesDir(profileDir string) string {
	return filepath.Join(DataDir(profileDir), "files")
}

// LogsDir returns the directory holding structured logs.
func LogsDir(profileDir string) string {
	return filepath.Join(DataDir(profileDir), "logs")
}

// ConvFile returns the conversation state file path.
func ConvFile(profileDir string) string {
	return filepath.Join(DataDir(profileDir), "conv.json")
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func expandHomePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}
