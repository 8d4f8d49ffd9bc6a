// Package policy holds the access predicates used by the course and lesson
// endpoints and the per-action composition table.
package policy

import (
	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/google/uuid"
)

// Identity is the authenticated caller. The role is resolved from the token
// when the request is authenticated and is not looked up again.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   models.Role
}

// Predicate decides access for an identity against an optional resource owner.
type Predicate func(id *Identity, ownerID *uuid.UUID) bool

func Authenticated(id *Identity, _ *uuid.UUID) bool {
	return id != nil
}

func Moderator(id *Identity, _ *uuid.UUID) bool {
	return id != nil && id.Role == models.RoleModerator
}

func NotModerator(id *Identity, ownerID *uuid.UUID) bool {
	return id != nil && !Moderator(id, ownerID)
}

func Owner(id *Identity, ownerID *uuid.UUID) bool {
	return id != nil && ownerID != nil && *ownerID == id.UserID
}

func All(preds ...Predicate) Predicate {
	return func(id *Identity, ownerID *uuid.UUID) bool {
		for _, p := range preds {
			if !p(id, ownerID) {
				return false
			}
		}
		return true
	}
}

func Any(preds ...Predicate) Predicate {
	return func(id *Identity, ownerID *uuid.UUID) bool {
		for _, p := range preds {
			if p(id, ownerID) {
				return true
			}
		}
		return false
	}
}

type Action string

const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDestroy  Action = "destroy"
)

// Rules is the composition table shared by courses and lessons. Partial and
// full updates use the same rule.
var Rules = map[Action]Predicate{
	ActionList:     func(*Identity, *uuid.UUID) bool { return true },
	ActionCreate:   All(Authenticated, NotModerator),
	ActionRetrieve: All(Authenticated, Any(Moderator, Owner)),
	ActionUpdate:   All(Authenticated, Any(Moderator, Owner)),
	ActionDestroy:  All(Authenticated, Owner, NotModerator),
}

// Allow evaluates the rule for action. Unknown actions are denied.
func Allow(action Action, id *Identity, ownerID *uuid.UUID) bool {
	rule, ok := Rules[action]
	if !ok {
		return false
	}
	return rule(id, ownerID)
}
