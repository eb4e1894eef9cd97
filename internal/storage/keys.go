package storage

import (
	"errors"
	"fmt"
	"strings"
)

const objectExt = ".png"

var ErrInvalidObjectKey = errors.New("invalid object key")

// ObjectKey builds {projectId}/{generationId}/{artifactId}.png.
func ObjectKey(projectID, generationID, artifactID string) string {
	return projectID + "/" + generationID + "/" + artifactID + objectExt
}

type ObjectKeyParts struct {
	ProjectID    string
	GenerationID string
	ArtifactID   string
}

func ParseObjectKey(key string) (ObjectKeyParts, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || !strings.HasSuffix(parts[2], objectExt) {
		return ObjectKeyParts{}, fmt.Errorf("%w: %q", ErrInvalidObjectKey, key)
	}
	p := ObjectKeyParts{
		ProjectID:    parts[0],
		GenerationID: parts[1],
		ArtifactID:   strings.TrimSuffix(parts[2], objectExt),
	}
	if p.ProjectID == "" || p.GenerationID == "" || p.ArtifactID == "" {
		return ObjectKeyParts{}, fmt.Errorf("%w: %q", ErrInvalidObjectKey, key)
	}
	return p, nil
}
