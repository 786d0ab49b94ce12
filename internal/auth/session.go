package auth

import (
	"github.com/gin-contrib/sessions"
)

// SessionUserKey is the session attribute holding the authenticated user id.
const SessionUserKey = "curr_user"

func EstablishSession(session sessions.Session, userID uint) error {
	session.Set(SessionUserKey, userID)
	return session.Save()
}

func ClearSession(session sessions.Session) error {
	session.Delete(SessionUserKey)
	return session.Save()
}

// SessionUserID returns the user id stored in the session, if any.
func SessionUserID(session sessions.Session) (uint, bool) {
	switch v := session.Get(SessionUserKey).(type) {
	case uint:
		return v, true
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case uint64:
		return uint(v), true
	default:
		return 0, false
	}
}
