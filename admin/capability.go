package admin

import "estatedesk/model"

// Capability decides which actions a screen offers. It only hides controls;
// the API authorizes every request on its own.
type Capability interface {
	CanManage() bool
}

// RoleGate allows managing listings to the admin role.
type RoleGate struct {
	Role string
}

func (g RoleGate) CanManage() bool {
	return g.Role == model.RoleAdmin
}

const DeletePrompt = "Are you sure you want to delete this listing?"

type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Nothing gets deleted unless a Confirmer is configured.
var denyAll = ConfirmFunc(func(string) bool { return false })
