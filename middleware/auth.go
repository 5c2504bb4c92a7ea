package middleware

import (
	"context"
	"net/http"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
)

// Gin context keys set by EnsureValidToken
const (
	subjectKey   = "subject"
	claimsKey    = "validated_claims"
	principalKey = "principal"
)

// AuthorityAdmin guards admin-only routes
const AuthorityAdmin = "ROLE_ADMIN"

// PrincipalLookup resolves a token subject to the caller of a request
type PrincipalLookup interface {
	PrincipalFor(ctx context.Context, username string) (models.Principal, error)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// EnsureValidToken is a middleware that checks the access token and loads the
// caller's principal. Refresh tokens are not accepted here.
func EnsureValidToken(v *validator.Validator, users PrincipalLookup) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logrus.WithError(err).Debug("Encountered error while validating JWT")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logrus.WithError(writeErr).Error("Failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		v.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r

			subject, claims, err := utils.ClaimsFrom(r.Context().Value(jwtmiddleware.ContextKey{}))
			if err != nil || claims.IsRefresh() {
				abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Failed to validate JWT.")
				return
			}

			principal, err := users.PrincipalFor(r.Context(), subject)
			if err != nil {
				logrus.WithError(err).WithField("subject", subject).Debug("Token subject rejected")
				abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token subject is not an active user")
				return
			}

			c.Set(subjectKey, subject)
			c.Set(claimsKey, claims)
			c.Set(principalKey, principal)

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetSubject extracts the token subject (the username) from the Gin context
func GetSubject(c *gin.Context) (string, error) {
	subject, exists := c.Get(subjectKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_SUBJECT", Message: "Subject not found in context"}
	}

	subjectStr, ok := subject.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_SUBJECT", Message: "Subject is not a string"}
	}

	return subjectStr, nil
}

// GetClaims extracts the validated custom claims from the Gin context
func GetClaims(c *gin.Context) (*utils.TokenClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	tokenClaims, ok := claims.(*utils.TokenClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return tokenClaims, nil
}

// GetPrincipal returns the authenticated caller
func GetPrincipal(c *gin.Context) (models.Principal, error) {
	p, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, &AuthError{Code: "MISSING_PRINCIPAL", Message: "Principal not found in context"}
	}

	principal, ok := p.(models.Principal)
	if !ok {
		return models.Principal{}, &AuthError{Code: "INVALID_PRINCIPAL", Message: "Principal is not in the expected format"}
	}

	return principal, nil
}

// SetPrincipal stores the caller on the context. Tests use it to skip token
// validation.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(subjectKey, p.Username)
	c.Set(claimsKey, &utils.TokenClaims{Authorities: []string{models.AuthorityFor(p.Role)}})
	c.Set(principalKey, p)
}

// RequireAuthority is a middleware that checks if the token grants authority
func RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}

		if !claims.HasAuthority(authority) {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_AUTHORITY", "Insufficient permissions to access this resource")
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
