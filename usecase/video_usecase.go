package usecase

import (
	"context"

	"video-api/domain/dto"
	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"
)

type IVideoUsecase interface {
	Get(ctx context.Context, id int64) (model.Video, error)
	Create(ctx context.Context, id int64, req dto.VideoPutRequest) (model.Video, error)
	Patch(ctx context.Context, id int64, req dto.VideoPatchRequest) (model.Video, error)
	Delete(ctx context.Context, id int64) error
}

type videoUsecase struct {
	videoRepo repository.IVideo
	events    []repository.IVideoEvent
}

// NewVideoUsecase wires the store and any number of event publishers. Nil
// publishers are ignored.
func NewVideoUsecase(videoRepo repository.IVideo, events ...repository.IVideoEvent) IVideoUsecase {
	vu := &videoUsecase{videoRepo: videoRepo}
	for _, e := range events {
		if e != nil {
			vu.events = append(vu.events, e)
		}
	}
	return vu
}

func (u *videoUsecase) Get(ctx context.Context, id int64) (model.Video, error) {
	return u.videoRepo.GetById(ctx, id)
}

func (u *videoUsecase) Create(ctx context.Context, id int64, req dto.VideoPutRequest) (model.Video, error) {
	video := req.ToModel(id)
	if err := u.videoRepo.Create(ctx, video); err != nil {
		return model.Video{}, err
	}
	u.publish(ctx, model.NewVideoEvent(model.VideoCreated, video))
	return video, nil
}

// Patch hands only the present fields to the store so concurrent patches of
// different fields do not overwrite each other.
func (u *videoUsecase) Patch(ctx context.Context, id int64, req dto.VideoPatchRequest) (model.Video, error) {
	changes := req.Changes()
	video, err := u.videoRepo.Update(ctx, id, changes)
	if err != nil {
		return model.Video{}, err
	}
	if !changes.Empty() {
		u.publish(ctx, model.NewVideoEvent(model.VideoUpdated, video))
	}
	return video, nil
}

func (u *videoUsecase) Delete(ctx context.Context, id int64) error {
	video, err := u.videoRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	u.publish(ctx, model.NewVideoEvent(model.VideoDeleted, video))
	return nil
}

// publish never fails the request: the write is already committed.
func (u *videoUsecase) publish(ctx context.Context, event model.VideoEvent) {
	for _, e := range u.events {
		if err := e.Publish(ctx, event); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"error":    err,
				"type":     event.Type,
				"video_id": event.Video.ID,
			}).Error("Error while publishing video event")
		}
	}
}
