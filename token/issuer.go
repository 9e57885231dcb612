package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Signer signs login API tokens and supplies the key that checks them.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)
	Key(token *jwt.Token) (any, error)
	Alg() string
}

// HMACSigner signs with HS256 and a shared secret.
type HMACSigner struct {
	secret []byte
}

var _ Signer = (*HMACSigner)(nil)

func NewHMACSigner(secret string) *HMACSigner {
	return &HMACSigner{secret: []byte(secret)}
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign login token")
	}
	return signed, nil
}

func (h *HMACSigner) Key(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACSigner) Alg() string {
	return jwt.SigningMethodHS256.Alg()
}

// Issuer creates the time-limited tokens returned by the login API.
type Issuer struct {
	signer Signer
	expiry time.Duration
}

func NewIssuer(signer Signer, expiry time.Duration) *Issuer {
	return &Issuer{
		signer: signer,
		expiry: expiry,
	}
}

// Issue signs a token carrying the username, valid for the issuer's expiry.
func (i *Issuer) Issue(username string) (string, error) {
	now := NowTimeFunc()
	claims := jwt.MapClaims{
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(i.expiry).Unix(),
		"jti":      uuid.New().String(),
	}
	return i.signer.Sign(claims)
}

// Verify checks the signature and expiry of a token and returns its username.
func (i *Issuer) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, i.signer.Key,
		jwt.WithValidMethods([]string{i.signer.Alg()}),
		jwt.WithTimeFunc(NowTimeFunc),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Wrapf(apperrors.ErrInvalidCredential, "parse token: %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.Wrap(apperrors.ErrMalformedResponse, "unexpected claims type")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", errors.Wrap(apperrors.ErrMalformedResponse, "token has no username")
	}
	return username, nil
}
