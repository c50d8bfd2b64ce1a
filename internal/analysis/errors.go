package analysis

import "errors"

// ErrNoArtifact indicates a question was asked against a source that has
// never been analyzed, so there is no summary to fall back on.
var ErrNoArtifact = errors.New("no analysis found - analyze the source first")
