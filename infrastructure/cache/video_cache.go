package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

func NewCache(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// VideoCache is a read-through redis cache in front of a video store. The store
// stays the source of truth: redis failures are logged and bypassed.
type VideoCache struct {
	next   repository.IVideo
	client *redis.Client
	ttl    time.Duration
}

func NewVideoCache(next repository.IVideo, client *redis.Client, ttl time.Duration) *VideoCache {
	return &VideoCache{next: next, client: client, ttl: ttl}
}

func videoKey(id int64) string {
	return fmt.Sprintf("video:%d", id)
}

func (c *VideoCache) GetById(ctx context.Context, id int64) (model.Video, error) {
	if video, ok := c.get(ctx, id); ok {
		return video, nil
	}

	video, err := c.next.GetById(ctx, id)
	if err != nil {
		return video, err
	}
	c.set(ctx, video)
	return video, nil
}

func (c *VideoCache) Create(ctx context.Context, video model.Video) error {
	if err := c.next.Create(ctx, video); err != nil {
		return err
	}
	c.set(ctx, video)
	return nil
}

// Update and Delete evict; the next GetById refills from the store.
func (c *VideoCache) Update(ctx context.Context, id int64, changes model.VideoChanges) (model.Video, error) {
	video, err := c.next.Update(ctx, id, changes)
	if !changes.Empty() {
		c.evict(ctx, id)
	}
	return video, err
}

func (c *VideoCache) Delete(ctx context.Context, id int64) (model.Video, error) {
	video, err := c.next.Delete(ctx, id)
	c.evict(ctx, id)
	return video, err
}

func (c *VideoCache) get(ctx context.Context, id int64) (model.Video, bool) {
	if c.client == nil {
		return model.Video{}, false
	}
	raw, err := c.client.Get(ctx, videoKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.GetLogger().WithFields(map[string]interface{}{
				"error":    err,
				"video_id": id,
			}).Warn("redis: read video failed, falling back to store")
		}
		return model.Video{}, false
	}

	var video model.Video
	if err := json.Unmarshal(raw, &video); err != nil {
		logger.GetLogger().WithField("error", err).Warn("redis: cached video is corrupt")
		c.evict(ctx, id)
		return model.Video{}, false
	}
	return video, true
}

func (c *VideoCache) set(ctx context.Context, video model.Video) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(video)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, videoKey(video.ID), raw, c.ttl).Err(); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": video.ID,
		}).Warn("redis: write video failed")
	}
}

func (c *VideoCache) evict(ctx context.Context, id int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, videoKey(id)).Err(); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":    err,
			"video_id": id,
		}).Warn("redis: evict video failed")
	}
}

var _ repository.IVideo = (*VideoCache)(nil)
