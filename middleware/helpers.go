package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimUserID = "user_id"
	jwtClaimClubID = "club_id"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	userID, err := intClaim(claims, jwtClaimUserID)
	if err != nil {
		return 0, err
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user ID value in '%s' claim: %d", jwtClaimUserID, userID)
	}
	return userID, nil
}

// GetClubIDFromContext возвращает nil для личной области владения.
func GetClubIDFromContext(ctx context.Context) (*int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := claims[jwtClaimClubID]; !ok {
		return nil, nil
	}
	clubID, err := intClaim(claims, jwtClaimClubID)
	if err != nil {
		return nil, err
	}
	return &clubID, nil
}

// GetLanguageFromContext возвращает язык запроса, пустая строка — язык
// не определён.
func GetLanguageFromContext(ctx context.Context) string {
	lang, _ := ctx.Value(langContextKey).(string)
	return lang
}

func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}

	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim value: %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", name, raw)
	}
}
