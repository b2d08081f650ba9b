package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrUnknownCascade = errors.New("unknown cascade")

// CascadeDirEnv overrides the directory holding the Haar cascade XML files
const CascadeDirEnv = "BLINK_CASCADE_DIR"

var cascadeFiles = map[string]string{
	"face": "haarcascade_frontalface_default.xml",
	"eye":  "haarcascade_eye_tree_eyeglasses.xml",
}

// GetCascadePath returns the path of a bundled cascade, `face` or `eye`
func GetCascadePath(name string) (string, error) {
	file, ok := cascadeFiles[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCascade, name)
	}

	dir := os.Getenv(CascadeDirEnv)
	if dir == "" {
		dir = filepath.Join("resources", "haarcascades")
	}
	return filepath.Join(dir, file), nil
}
