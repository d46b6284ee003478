package httpapi

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/AntonStoeckl/library-rentals-go/core"
)

const (
	viewerKey    = "viewer"
	bearerPrefix = "bearer "
)

var (
	// ErrUnauthenticated is returned for requests without a valid bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when a non-staff user calls a staff route.
	ErrForbidden = errors.New("staff only")
)

// Claims is the token payload: the standard claims, with sub holding the user id, plus the staff flag.
type Claims struct {
	IsStaff bool `json:"is_staff"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for viewer valid for ttl.
func IssueToken(secret []byte, viewer core.Viewer, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		IsStaff: viewer.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies an HS256 token and returns the viewer it was issued for.
func ParseToken(secret []byte, tokenString string) (core.Viewer, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return core.Viewer{}, errors.Join(ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return core.Viewer{}, errors.Join(ErrUnauthenticated, err)
	}

	return core.Viewer{UserID: userID, IsStaff: claims.IsStaff}, nil
}

func authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
				return ErrUnauthenticated
			}

			viewer, err := ParseToken(secret, strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				return err
			}

			c.Set(viewerKey, viewer)

			return next(c)
		}
	}
}

func staffOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !viewerOf(c).IsStaff {
			return ErrForbidden
		}

		return next(c)
	}
}

func viewerOf(c echo.Context) core.Viewer {
	viewer, _ := c.Get(viewerKey).(core.Viewer)
	return viewer
}
