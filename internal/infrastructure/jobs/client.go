package jobs

import (
	"context"

	"github.com/hibiken/asynq"
)

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye un cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePasswordReset encola el correo de reseteo con tres reintentos.
func (c *Client) EnqueuePasswordReset(ctx context.Context, to, displayName, link string) error {
	task, err := NewPasswordResetTask(PasswordResetPayload{To: to, DisplayName: displayName, Link: link})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
