package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/tiptravel/tip-web/internal/domain"
	"github.com/tiptravel/tip-web/internal/port"
)

// Codec turns sessions into opaque cookie values: an HS256 JWT nested in a
// compact JWE (dir, A256GCM), so token fields are unreadable client side.
type Codec struct {
	secret    []byte
	key       []byte
	issuer    string
	encrypter jose.Encrypter
	now       func() time.Time
}

const encryptionInfo = "tip-web session encryption"

// NewCodec creates a codec. Signing and encryption keys both derive from secret.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session codec: empty secret")
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(encryptionInfo)), key); err != nil {
		return nil, fmt.Errorf("session codec: derive key: %w", err)
	}
	enc, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: key},
		(&jose.EncrypterOptions{}).WithContentType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("session codec: encrypter: %w", err)
	}

	return &Codec{secret: []byte(secret), key: key, issuer: issuer, encrypter: enc, now: time.Now}, nil
}

type claims struct {
	AccessToken          string      `json:"at"`
	RefreshToken         string      `json:"rt"`
	DeviceID             string      `json:"did"`
	AccessTokenExpiresAt int64       `json:"ate"` // unix milliseconds
	User                 domain.User `json:"user"`
	Error                string      `json:"err,omitempty"`
	jwt.RegisteredClaims
}

// Encode signs and encrypts s. The token expires with the session.
func (c *Codec) Encode(s *domain.Session) (string, error) {
	if s == nil {
		return "", errors.New("session codec: nil session")
	}
	if s.ExpiresAt.IsZero() {
		return "", errors.New("session codec: session has no expiry")
	}

	cl := claims{
		AccessToken:          s.AccessToken,
		RefreshToken:         s.RefreshToken,
		DeviceID:             s.DeviceID,
		AccessTokenExpiresAt: s.AccessTokenExpiresAt.UnixMilli(),
		User:                 s.User,
		Error:                s.Error,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session codec: sign: %w", err)
	}
	obj, err := c.encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("session codec: encrypt: %w", err)
	}
	token, err := obj.CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("session codec: serialize: %w", err)
	}
	return token, nil
}

// Decode decrypts token and verifies the signature, issuer and expiry of
// the inner JWT. Every failure wraps port.ErrSessionInvalid.
func (c *Codec) Decode(token string) (*domain.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", port.ErrSessionInvalid)
	}

	obj, err := jose.ParseEncrypted(token, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSessionInvalid, err)
	}
	inner, err := obj.Decrypt(c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSessionInvalid, err)
	}

	var cl claims
	parsed, err := jwt.ParseWithClaims(string(inner), &cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrSessionInvalid, err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", port.ErrSessionInvalid)
	}

	return &domain.Session{
		AccessToken:          cl.AccessToken,
		RefreshToken:         cl.RefreshToken,
		DeviceID:             cl.DeviceID,
		AccessTokenExpiresAt: time.UnixMilli(cl.AccessTokenExpiresAt),
		User:                 cl.User,
		Error:                cl.Error,
		ExpiresAt:            cl.ExpiresAt.Time,
	}, nil
}
