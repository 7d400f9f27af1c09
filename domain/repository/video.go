package repository

import (
	"context"
	"errors"

	"video-api/domain/model"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrVideoExists   = errors.New("video already exists")
)

// IVideo persists videos by primary key. Implementations return ErrVideoNotFound
// when no record matches and ErrVideoExists when Create hits an existing id.
//
// Update writes only the present fields of changes and returns the stored record
// as of that write; empty changes just read the record. Delete returns the
// removed record. Both are single statements (or one transaction) against the
// primary, so concurrent partial updates of different fields never overwrite
// each other.
type IVideo interface {
	GetById(ctx context.Context, id int64) (model.Video, error)
	Create(ctx context.Context, video model.Video) error
	Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error)
	Delete(ctx context.Context, id int64) (model.Video, error)
}

// IVideoEvent publishes committed video changes to a message broker.
type IVideoEvent interface {
	Publish(ctx context.Context, event model.VideoEvent) error
	Close() error
}
