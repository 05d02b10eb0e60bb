// Package jobs tareas en segundo plano sobre asynq: el cliente encola desde la API
// y el worker (cmd/worker) las procesa.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

const (
	// QueueDefault cola por defecto de las tareas.
	QueueDefault = "default"
	// TaskTypePasswordReset envío del enlace de reseteo de contraseña.
	TaskTypePasswordReset = "mail:password_reset"
)

// PasswordResetPayload datos necesarios para el correo de reseteo.
type PasswordResetPayload struct {
	To          string `json:"to"`
	DisplayName string `json:"displayName"`
	Link        string `json:"link"`
}

// NewPasswordResetTask construye la tarea asynq.
func NewPasswordResetTask(payload PasswordResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePasswordReset, data), nil
}

// Sender envía un correo de texto plano.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PasswordResetHandler procesa TaskTypePasswordReset.
type PasswordResetHandler struct {
	sender Sender
	log    *logger.Logger
}

// NewPasswordResetHandler construye el handler.
func NewPasswordResetHandler(sender Sender, log *logger.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{sender: sender, log: log}
}

// Handle envía el correo. Un payload ilegible no se reintenta.
func (h *PasswordResetHandler) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.To == "" || payload.Link == "" {
		h.log.Warn().Str("task", t.Type()).Msg("payload de reseteo inválido")
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}
	if err := h.sender.Send(ctx, payload.To, "Restablece tu contraseña", passwordResetBody(payload)); err != nil {
		return fmt.Errorf("enviar correo de reseteo: %w", err)
	}
	h.log.Info().Str("to", payload.To).Msg("correo de reseteo enviado")
	return nil
}

func passwordResetBody(p PasswordResetPayload) string {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" {
		name = p.To
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s,\n\n", name)
	b.WriteString("Recibimos una solicitud para restablecer la contraseña de tu cuenta de GreenGrocer IMS.\n")
	fmt.Fprintf(&b, "Abre este enlace para elegir una nueva (vence en 1 hora):\n\n%s\n\n", p.Link)
	b.WriteString("Si no fuiste tú, ignora este mensaje.\n")
	return b.String()
}
