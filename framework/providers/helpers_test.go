package providers_test

import (
	"os"
	"path/filepath"
)

func writeYAML(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}
