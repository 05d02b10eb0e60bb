package entity

import (
	"fmt"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
)

// Status estado de un documento transaccional (recepción, entrega, traslado).
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusWaiting  Status = "Waiting"
	StatusReady    Status = "Ready"
	StatusPacking  Status = "Packing"
	StatusDone     Status = "Done"
	StatusCanceled Status = "Canceled"
)

// IsTerminal indica si el estado ya no admite transiciones.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// IsValid indica si el estado pertenece al enum conocido.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusWaiting, StatusReady, StatusPacking, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// Action acción del usuario que avanza el estado.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReady    Action = "ready"
	ActionPick     Action = "pick"
	ActionPack     Action = "pack"
	ActionValidate Action = "validate"
	ActionCancel   Action = "cancel"
)

// ParseAction valida el nombre de una acción recibido desde la API.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionConfirm, ActionReady, ActionPick, ActionPack, ActionValidate, ActionCancel:
		return a, true
	}
	return "", false
}

// Workflow tabla de transiciones: acción -> estado origen -> estado destino.
type Workflow struct {
	name        string
	transitions map[Action]map[Status]Status
}

// Apply devuelve el estado resultante o ErrInvalidTransition.
func (w Workflow) Apply(from Status, action Action) (Status, error) {
	if from.IsTerminal() {
		return from, fmt.Errorf("%s %s desde %s: %w", w.name, action, from, domain.ErrInvalidTransition)
	}
	if action == ActionCancel {
		return StatusCanceled, nil
	}
	to, ok := w.transitions[action][from]
	if !ok {
		return from, fmt.Errorf("%s %s desde %s: %w", w.name, action, from, domain.ErrInvalidTransition)
	}
	return to, nil
}

// Actions lista las acciones disponibles desde un estado (para la UI).
func (w Workflow) Actions(from Status) []Action {
	if from.IsTerminal() {
		return nil
	}
	var out []Action
	for _, a := range []Action{ActionConfirm, ActionReady, ActionPick, ActionPack, ActionValidate} {
		if _, ok := w.transitions[a][from]; ok {
			out = append(out, a)
		}
	}
	return append(out, ActionCancel)
}

// ReceiptWorkflow: Draft -> Waiting -> Ready -> Done. Validate se acepta desde
// cualquier estado no terminal.
var ReceiptWorkflow = Workflow{
	name: "receipt",
	transitions: map[Action]map[Status]Status{
		ActionConfirm:  {StatusDraft: StatusWaiting},
		ActionReady:    {StatusWaiting: StatusReady},
		ActionValidate: {StatusDraft: StatusDone, StatusWaiting: StatusDone, StatusReady: StatusDone},
	},
}

// TransferWorkflow sigue el mismo ciclo que las recepciones.
var TransferWorkflow = Workflow{
	name:        "transfer",
	transitions: ReceiptWorkflow.transitions,
}

// DeliveryWorkflow: Draft -> Packing -> Ready -> Done. Waiting se acepta para
// validar porque existen entregas antiguas en ese estado.
var DeliveryWorkflow = Workflow{
	name: "delivery",
	transitions: map[Action]map[Status]Status{
		ActionPick:     {StatusDraft: StatusPacking},
		ActionPack:     {StatusPacking: StatusReady},
		ActionValidate: {StatusReady: StatusDone, StatusWaiting: StatusDone},
	},
}
