package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/configuration"
	"video-api/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func NewPubSub(ctx context.Context, cfg configuration.Pubsub) (*pubsub.Client, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts,
			option.WithEndpoint(cfg.Endpoint),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	} else if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return pubsub.NewClient(ctx, cfg.ProjectID, opts...)
}

type VideoPubSub struct {
	client    *pubsub.Client
	topicName string

	mu    sync.Mutex
	topic *pubsub.Topic
}

func NewVideoPubSub(client *pubsub.Client, topicName string) *VideoPubSub {
	return &VideoPubSub{client: client, topicName: topicName}
}

func (p *VideoPubSub) Publish(ctx context.Context, event model.VideoEvent) error {
	if p.client == nil {
		return errors.New("pubsub: client is not initialized")
	}

	topic, err := p.ensureTopic(ctx)
	if err != nil {
		return err
	}

	msg, err := newVideoMessage(event)
	if err != nil {
		return err
	}

	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return err
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"server_id": serverID,
		"type":      event.Type,
		"video_id":  event.Video.ID,
	}).Debug("Video event published")
	return nil
}

// ensureTopic looks the topic up once and creates it when missing.
func (p *VideoPubSub) ensureTopic(ctx context.Context) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.topic != nil {
		return p.topic, nil
	}

	topic := p.client.Topic(p.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist, creating it")
		topic, err = p.client.CreateTopic(ctx, p.topicName)
		if err != nil {
			return nil, err
		}
	}
	p.topic = topic
	return topic, nil
}

func (p *VideoPubSub) Close() error {
	p.mu.Lock()
	if p.topic != nil {
		p.topic.Stop()
	}
	p.mu.Unlock()

	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func newVideoMessage(event model.VideoEvent) (*pubsub.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":     string(event.Type),
			"video_id": strconv.FormatInt(event.Video.ID, 10),
		},
	}, nil
}

var _ repository.IVideoEvent = (*VideoPubSub)(nil)
