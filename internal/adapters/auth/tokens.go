// Package auth issues signed and encrypted bearer tokens and hashes
// passwords.
package auth

import (
	"errors"
	"time"

	"github.com/gorilla/securecookie"

	"hotel_booking/internal/domain"
)

// TokenName is both the securecookie name and the HTTP cookie name.
const TokenName = "token"

type claims struct {
	UID  int64       `json:"uid"`
	Role domain.Role `json:"role"`
	Exp  int64       `json:"exp"`
}

type Tokens struct {
	sc  *securecookie.SecureCookie
	ttl time.Duration
	now func() time.Time
}

func NewTokens(hashKey, blockKey []byte, ttl time.Duration) *Tokens {
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(int(ttl.Seconds()))
	return &Tokens{sc: sc, ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(r domain.Requester) (string, time.Time, error) {
	exp := t.now().Add(t.ttl).UTC()
	tok, err := t.sc.Encode(TokenName, claims{UID: r.ID, Role: r.Role, Exp: exp.Unix()})
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

func (t *Tokens) Parse(token string) (domain.Requester, error) {
	if token == "" {
		return domain.Requester{}, domain.Unauthenticated("Not authorized to access this route")
	}
	var c claims
	if err := t.sc.Decode(TokenName, token, &c); err != nil {
		return domain.Requester{}, errors.Join(domain.Unauthenticated("Not authorized to access this route"), err)
	}
	if c.UID == 0 || !c.Role.Valid() || t.now().Unix() > c.Exp {
		return domain.Requester{}, domain.Unauthenticated("Not authorized to access this route")
	}
	return domain.Requester{ID: c.UID, Role: c.Role}, nil
}
