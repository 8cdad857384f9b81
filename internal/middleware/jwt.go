package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // sentinel comparison against token verification outcomes
    "net/http" // HTTP status codes for responses
    "strings"  // header splitting

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/Andressalasf/API-Store/internal/utils" // token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's claims into the request context.  The provided
// secret must match the one used when issuing tokens.  Handlers behind
// this middleware read the authenticated identity via c.Get("user_id"),
// c.Get("email") and c.Get("role").
//
// No database lookup happens here: the signature is trusted exclusively,
// so a user deleted after issuance stays authenticated until the access
// token naturally expires.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // The Authorization header must be present and of the exact
            // form "Bearer <token>": two space-separated parts, the first
            // literally "Bearer".  Each failure mode gets its own message
            // so clients can tell a missing header from a malformed one
            // and an expired token from a forged one.
            auth := c.Request().Header.Get("Authorization")
            if auth == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authorization header is missing"})
            }
            parts := strings.Split(auth, " ")
            if len(parts) != 2 || parts[0] != "Bearer" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Authorization header format must be: Bearer <token>"})
            }

            claims, err := utils.VerifyToken(parts[1], secret)
            if err != nil {
                if errors.Is(err, utils.ErrTokenExpired) {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token expired"})
                }
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }
            uid, err := claims.UserID()
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
            }

            // Store the decoded identity in the context for downstream
            // handlers (e.g. the profile endpoint resolving its subject).
            c.Set("user_id", uid)
            c.Set("email", claims.Email)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}
