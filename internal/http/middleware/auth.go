// Package middleware – bearer-token authentication and role gating.
//
// Every API endpoint is authenticated. Auth validates an HS256 bearer token
// and stores the caller's identity (user id, role, department) in the Gin
// context; RequireRoles gates route groups on the role claim. The role
// ladder is employee < manager < hr < admin: a gate passes when the caller's
// role is at or above any named role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by Auth.
const (
	CtxUserID     = "userID"
	CtxRole       = "role"
	CtxDepartment = "department"
)

// roleRank orders roles for RequireRoles; unknown roles rank lowest.
var roleRank = map[string]int{
	"employee": 1,
	"manager":  2,
	"hr":       3,
	"admin":    4,
}

// AuthClaims is the token payload the platform issues.
type AuthClaims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

type authErrorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, authErrorBody{Success: false, Code: code, Message: msg})
}

// Auth returns a middleware that validates the Authorization bearer token
// with the given HS256 secret and populates the identity context keys.
func Auth(secret []byte) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims := &AuthClaims{}
		parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		uid := claims.UserID
		if uid == "" {
			uid = claims.Subject
		}
		if uid == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "token has no subject")
			return
		}

		c.Set(CtxUserID, uid)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxDepartment, claims.Department)
		c.Next()
	}
}

// RequireRoles gates a route group: the request proceeds when the caller's
// role ranks at or above the lowest of the named roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	min := 0
	for _, r := range roles {
		if rank, ok := roleRank[r]; ok && (min == 0 || rank < min) {
			min = rank
		}
	}
	return func(c *gin.Context) {
		role, _ := c.Get(CtxRole)
		rank := roleRank[asString(role)]
		if min == 0 || rank < min {
			abortAuth(c, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		c.Next()
	}
}

// IssueToken mints an HS256 token for the given identity. Used by tests and
// provisioning tooling; the platform itself only verifies.
func IssueToken(secret []byte, claims AuthClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
