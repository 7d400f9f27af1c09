package model

import "time"

type VideoEventType string

const (
	VideoCreated VideoEventType = "video.created"
	VideoUpdated VideoEventType = "video.updated"
	VideoDeleted VideoEventType = "video.deleted"
)

// VideoEvent is emitted after a write has been committed.
type VideoEvent struct {
	Type       VideoEventType `json:"type"`
	Video      Video          `json:"video"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewVideoEvent(eventType VideoEventType, video Video) VideoEvent {
	return VideoEvent{
		Type:       eventType,
		Video:      video,
		OccurredAt: time.Now().UTC(),
	}
}
