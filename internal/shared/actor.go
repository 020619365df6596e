package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	sessionTokenKey   = "backend_token"
	sessionProfileKey = "profile"
)

// Actor is the signed-in user on whose behalf a request runs.
type Actor struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Token     string     `json:"-"`
}

// DisplayName is the label recorded as requestor on new records.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// Expired reports whether the backend token has passed its expiry.
func (a Actor) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !now.Before(*a.ExpiresAt)
}

// StoreActor binds actor to the session.
func StoreActor(sess *Session, actor Actor) error {
	profile, err := json.Marshal(actor)
	if err != nil {
		return err
	}
	sess.SetUser(strconv.FormatInt(actor.ID, 10))
	sess.Set(sessionTokenKey, actor.Token)
	sess.Set(sessionProfileKey, string(profile))
	return nil
}

// LoadActor reads the actor bound to the session.
func LoadActor(sess *Session) (Actor, bool) {
	if sess == nil || sess.User() == "" {
		return Actor{}, false
	}
	token := sess.Get(sessionTokenKey)
	raw := sess.Get(sessionProfileKey)
	if token == "" || raw == "" {
		return Actor{}, false
	}
	var actor Actor
	if err := json.Unmarshal([]byte(raw), &actor); err != nil {
		return Actor{}, false
	}
	actor.Token = token
	return actor, true
}
