package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	// The first registered user is the admin.
	adminUserID = 1
)

var (
	ErrMalformed        = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrWrongType        = errors.New("wrong token type")
)

// Claims is the full claim set carried by both token types. Refresh tokens
// never have Fresh set.
type Claims struct {
	Type    string `json:"type"`
	Fresh   bool   `json:"fresh,omitempty"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() uint {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

type Codec struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret []byte) *Codec {
	return &Codec{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func (cd *Codec) IssueAccessToken(userID uint, fresh bool) (string, error) {
	return cd.sign(cd.newClaims(userID, TypeAccess, fresh, cd.AccessTTL), cd.AccessSecret)
}

func (cd *Codec) IssueRefreshToken(userID uint) (string, error) {
	return cd.sign(cd.newClaims(userID, TypeRefresh, false, cd.RefreshTTL), cd.RefreshSecret)
}

func (cd *Codec) DecodeAccess(raw string) (*Claims, error) {
	return decode(raw, cd.AccessSecret, TypeAccess)
}

func (cd *Codec) DecodeRefresh(raw string) (*Claims, error) {
	return decode(raw, cd.RefreshSecret, TypeRefresh)
}

func (cd *Codec) newClaims(userID uint, typ string, fresh bool, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		Type:    typ,
		Fresh:   fresh,
		IsAdmin: userID == adminUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
}

func (cd *Codec) sign(claims Claims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func decode(raw string, secret []byte, wantType string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrInvalidSignature
		}
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrInvalidSignature):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	if claims.Type != wantType {
		return nil, ErrWrongType
	}
	return &claims, nil
}
