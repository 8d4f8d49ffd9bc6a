package policy

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/lms-backend/internal/models"
	"github.com/google/uuid"
)

func TestAllow(t *testing.T) {
	owner := &Identity{UserID: uuid.New(), Role: models.RoleUser}
	stranger := &Identity{UserID: uuid.New(), Role: models.RoleUser}
	moder := &Identity{UserID: uuid.New(), Role: models.RoleModerator}
	ownerModer := &Identity{UserID: owner.UserID, Role: models.RoleModerator}
	ownerID := &owner.UserID

	cases := []struct {
		name   string
		action Action
		id     *Identity
		want   bool
	}{
		{"anonymous list", ActionList, nil, true},
		{"stranger list", ActionList, stranger, true},
		{"anonymous create", ActionCreate, nil, false},
		{"user create", ActionCreate, stranger, true},
		{"moderator create", ActionCreate, moder, false},
		{"owner retrieve", ActionRetrieve, owner, true},
		{"moderator retrieve", ActionRetrieve, moder, true},
		{"stranger retrieve", ActionRetrieve, stranger, false},
		{"owner update", ActionUpdate, owner, true},
		{"moderator update", ActionUpdate, moder, true},
		{"stranger update", ActionUpdate, stranger, false},
		{"anonymous update", ActionUpdate, nil, false},
		{"owner destroy", ActionDestroy, owner, true},
		{"moderator destroy", ActionDestroy, moder, false},
		{"owner moderator destroy", ActionDestroy, ownerModer, false},
		{"stranger destroy", ActionDestroy, stranger, false},
		{"unknown action", Action("publish"), owner, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Allow(tc.action, tc.id, ownerID); got != tc.want {
				t.Fatalf("Allow(%s) = %v, want %v", tc.action, got, tc.want)
			}
		})
	}
}

func TestOwnerWithoutOwnerReference(t *testing.T) {
	id := &Identity{UserID: uuid.New()}
	if Owner(id, nil) {
		t.Fatal("identity must not own a resource with no owner")
	}
	if Allow(ActionUpdate, id, nil) {
		t.Fatal("non-moderator must not update an ownerless resource")
	}
}
