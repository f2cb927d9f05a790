package auth

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/habits-go/apperror"
)

// JWTMiddleware rejects requests without a valid access token and puts the
// token's user id on the request context for the handlers.
func JWTMiddleware(tokens *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				reject(w, r, `Bearer`, apperror.NewAuthError("Authorization header is missing", nil))
				return
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				reject(w, r, `Bearer error="invalid_request"`, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil))
				return
			}

			claims, err := tokens.Validate(tokenString, tokenTypeAccess)
			if err != nil {
				reject(w, r, `Bearer error="invalid_token"`, apperror.NewAuthError(tokenErrorMessage(err), err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// reject answers 401 with a WWW-Authenticate challenge (RFC 6750). The
// challenge marks the credentials themselves as refused, which clients use to
// tell a dead token from an ownership 401 returned by a handler.
func reject(w http.ResponseWriter, r *http.Request, challenge string, err error) {
	w.Header().Set("WWW-Authenticate", challenge)
	apperror.WriteError(w, r, err)
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid token signature"
	case errors.Is(err, errWrongTokenType):
		return "access token required"
	default:
		return "invalid token"
	}
}
