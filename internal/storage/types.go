package storage

import (
	"errors"
	"time"
)

// Source origin constants
const (
	OriginUploaded = "uploaded" // uploaded transcript
	OriginJoined   = "joined"   // joined-meeting placeholder
	OriginChat     = "chat"     // messaging chat selection
	OriginChannel  = "channel"  // community-server channel
)

// ErrNotFound indicates an unknown source or artifact.
var ErrNotFound = errors.New("not found")

// SourceItem is one analyzable unit: an uploaded transcript, a joined-meeting
// placeholder, or a chat/channel selection.
type SourceItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Origin     string    `json:"type"`
	Filename   string    `json:"filename,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
	FileSize   int64     `json:"fileSize,omitempty"`
	Status     string    `json:"status,omitempty"`
	MeetLink   string    `json:"meetLink,omitempty"`
	DriveLink  string    `json:"driveLink,omitempty"`
}

// Artifact is one summarization result. Immutable once created; a re-analysis
// produces a new artifact rather than editing an existing one.
type Artifact struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"transcriptId"`
	SourceName string    `json:"transcriptName"`
	Summary    string    `json:"summary"`
	Depth      string    `json:"analysisDepth"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Exchange is one question/answer record tied to a source.
type Exchange struct {
	ID           string    `json:"id"`
	SourceID     string    `json:"sourceId"`
	Question     string    `json:"question"`
	Answer       string    `json:"answer"`
	Method       string    `json:"method"`
	ContextUnits int       `json:"contextUnits,omitempty"`
	AskedAt      time.Time `json:"askedAt"`
}
