package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"video-api/domain/model"
	"video-api/domain/repository"
	"video-api/infrastructure/configuration"
	"video-api/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// NewServiceBus prefers a connection string and otherwise authenticates against
// <namespace>.servicebus.windows.net with the default Azure credential chain.
func NewServiceBus(ctx context.Context, cfg configuration.ServiceBus) (*azservicebus.Client, error) {
	if cfg.ConnectionString != "" {
		return azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}
	if cfg.Namespace == "" {
		return nil, errors.New("servicebus: namespace or connection string is required")
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(fmt.Sprintf("%s.servicebus.windows.net", cfg.Namespace), credential, nil)
}

type VideoServiceBus struct {
	client *azservicebus.Client
	queue  string

	mu     sync.Mutex
	sender *azservicebus.Sender
}

func NewVideoServiceBus(client *azservicebus.Client, queue string) *VideoServiceBus {
	return &VideoServiceBus{client: client, queue: queue}
}

func (s *VideoServiceBus) Publish(ctx context.Context, event model.VideoEvent) error {
	if s.client == nil {
		return errors.New("servicebus: client is not initialized")
	}

	sender, err := s.getSender()
	if err != nil {
		logger.GetLogger().
			WithField("error", err).
			Error("Error while making new sender service bus.")
		return err
	}

	msg, err := newVideoMessage(event)
	if err != nil {
		return err
	}

	if err := sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}

func (s *VideoServiceBus) getSender() (*azservicebus.Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sender != nil {
		return s.sender, nil
	}
	sender, err := s.client.NewSender(s.queue, nil)
	if err != nil {
		return nil, err
	}
	s.sender = sender
	return sender, nil
}

func (s *VideoServiceBus) Close() error {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.sender != nil {
		if err := s.sender.Close(ctx); err != nil {
			logger.GetLogger().
				WithField("error", err).
				Error("Error while closing sender.")
			errs = append(errs, err)
		}
		s.sender = nil
	}
	if s.client != nil {
		errs = append(errs, s.client.Close(ctx))
	}
	return errors.Join(errs...)
}

func newVideoMessage(event model.VideoEvent) (*azservicebus.Message, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	subject := string(event.Type)
	contentType := "application/json"
	return &azservicebus.Message{
		Body:        body,
		Subject:     &subject,
		ContentType: &contentType,
		ApplicationProperties: map[string]interface{}{
			"type":     subject,
			"video_id": event.Video.ID,
		},
	}, nil
}

var _ repository.IVideoEvent = (*VideoServiceBus)(nil)
