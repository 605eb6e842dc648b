package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	digest "github.com/opencontainers/go-digest"
)

// ImageID reads the image id written by --iidfile.
func ImageID(workdir string) (digest.Digest, error) {
	data, err := os.ReadFile(filepath.Join(workdir, IIDFile))
	if err != nil {
		return "", err
	}
	id, err := digest.Parse(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", IIDFile, err)
	}
	return id, nil
}

// Metadata reads the JSON document written by --metadata-file.
func Metadata(workdir string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(workdir, MetadataFile))
	if err != nil {
		return nil, err
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("parse %s: %w", MetadataFile, err)
	}
	return metadata, nil
}
