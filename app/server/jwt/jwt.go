package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"school-site-console/app/server/models"
)

type JWT struct {
	key []byte
}

// User is the identity carried in a session token. Not persisted anywhere,
// the signature is the only thing that makes it trustworthy.
type User struct {
	ID      uint
	LoginID string
	Role    string
	Name    string
	Email   string
	Expires int64 // Unix second
}

// CanWrite is the one writer-role predicate every mutating route consults.
func (u *User) CanWrite() bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleEditor
}

func New(key string) (*JWT, error) {
	if len(key) == 0 {
		return nil, errors.New("key is empty")
	}

	return &JWT{key: []byte(key)}, nil
}

// ParseUser verifies a token and maps its claims back into a User. Any
// failure (bad signature, expired, malformed claims) comes back as a plain
// error, callers never learn which.
func (j *JWT) ParseUser(tokenString string) (*User, error) {
	if len(tokenString) == 0 {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	user := &User{}
	if id, ok := claims["id"].(float64); ok {
		user.ID = uint(id)
	} else {
		return nil, fmt.Errorf("invalid token")
	}
	if exp, ok := claims["exp"].(float64); ok {
		user.Expires = int64(exp)
	} else {
		return nil, fmt.Errorf("invalid token")
	}
	user.LoginID, _ = claims["login_id"].(string)
	user.Role, _ = claims["role"].(string)
	user.Name, _ = claims["name"].(string)
	user.Email, _ = claims["email"].(string)

	return user, nil
}

func (j *JWT) SignToken(user *User) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"login_id": user.LoginID,
		"role":     user.Role,
		"name":     user.Name,
		"email":    user.Email,
		"exp":      user.Expires,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(j.key)
}
