// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/planora/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the caller as services see it: a signed-in user with a valid
// ObjectID.
type Actor struct {
	ID      primitive.ObjectID
	Name    string
	Email   string
	Picture string
}

// ActorFrom reads the caller from r. ok is false when nobody is signed in
// or the token subject is not an ObjectID; both fail closed.
func ActorFrom(r *http.Request) (Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return Actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Name: u.Name, Email: u.Email, Picture: u.Picture}, true
}

// UserCtx is ActorFrom for handlers that only need the name and id.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	a, ok := ActorFrom(r)
	return a.Name, a.ID, ok
}
