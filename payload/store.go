package payload

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/laborwatch/cluedash/consts"
)

// Save writes the payload as indented JSON, creating the directory if needed.
func Save(p *Payload, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), consts.DirPermissions); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, consts.FilePermissions)
}

// Load reads a payload previously written by Save, or the raw header value saved to
// a file.
func Load(filePath string) (*Payload, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return Decode(string(data))
}
