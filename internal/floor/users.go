package floor

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"restaurant-floor/internal/domain"
)

// Login checks a username and password against the users in the document.
func Login(doc domain.Document, username, password string) (domain.User, error) {
	for _, u := range doc.Users {
		if !strings.EqualFold(u.Username, username) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			break
		}
		return u, nil
	}
	return domain.User{}, fmt.Errorf("%w: bad username or password", domain.ErrUnauthorized)
}

// TouchUser records a liveness heartbeat. It is advisory only.
func (e *Engine) TouchUser(doc domain.Document, userID string) (domain.Document, error) {
	out := doc.Clone()
	u, err := out.User(userID)
	if err != nil {
		return doc, err
	}
	u.LastActive = e.millis()
	return out, nil
}
