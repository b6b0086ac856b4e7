package artifact

import (
	"context"
	"errors"
)

// ErrArtifact is wrapped by every artifact store failure.
var ErrArtifact = errors.New("artifact error")

// Store keeps run artifacts (screenshots) beyond the run that produced them.
type Store interface {
	// Save stores the local file for the task and returns its durable reference.
	Save(ctx context.Context, taskID, localPath string) (ref string, err error)
}
