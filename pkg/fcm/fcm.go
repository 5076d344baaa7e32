package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbmessaging "firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/dhinakarr/realtors-app-sub001/pkg/logger"
)

// Client wraps Firebase Cloud Messaging behind the narrow send surface the
// push sender needs.
type Client struct {
	messagingClient *fbmessaging.Client
	logger          *logger.Logger
}

type Config struct {
	CredentialsFile string
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Info("FCM client initialized")
	return &Client{
		messagingClient: messagingClient,
		logger:          log,
	}, nil
}

// Send delivers one push message to a device token and returns the provider
// message id.
func (c *Client) Send(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	message := &fbmessaging.Message{
		Token: token,
		Notification: &fbmessaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	id, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}

	c.logger.Debug("FCM message sent", "message_id", id)
	return id, nil
}

// IsTokenInvalid reports whether err means the device token is no longer
// registered with the provider and should be deactivated.
func (c *Client) IsTokenInvalid(err error) bool {
	return fbmessaging.IsUnregistered(err)
}
