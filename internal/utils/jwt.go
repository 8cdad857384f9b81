package utils // package utils provides helper functions for token issuing and verification

import (
    "errors"  // sentinel verification outcomes
    "strconv" // user IDs travel as the string subject claim
    "time"    // expiry computation

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Verification outcomes.  A structurally valid token whose expiry has
// passed yields ErrTokenExpired; a bad signature, wrong algorithm or
// corrupt token yields ErrTokenInvalid.  Callers branch on the two; they
// are never interchangeable (an expired token gets a different HTTP
// message than a forged one).
var (
    ErrTokenExpired = errors.New("token expired")
    ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the signed claim bundle carried by both token kinds.  Access
// tokens fill Email and Role; refresh tokens carry only the subject.  The
// subject is the user ID rendered as a decimal string.
type Claims struct {
    Email string `json:"email,omitempty"`
    Role  string `json:"role,omitempty"`
    jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uint64, error) {
    return strconv.ParseUint(c.Subject, 10, 64)
}

// SignedToken pairs a serialized JWT with its expiration time.  The
// expiry is returned separately so the refresh-token row can mirror the
// exp claim without re-parsing the token.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT proving a user's identity
// for protected requests.  Claims: sub (user ID), email, role, exp, iat.
func NewAccessToken(secret string, userID uint64, email, role string, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        Email: email,
        Role:  role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT used to mint a new token
// pair.  It carries only the subject; email and role are re-read from the
// user record at refresh time so a role change takes effect then.
func NewRefreshToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            ExpiresAt: jwt.NewNumericDate(exp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a token string against the signing
// secret.  Only HMAC signatures are accepted; a token signed with any
// other algorithm is invalid regardless of its content.
func VerifyToken(tokenString, secret string) (*Claims, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrTokenInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrTokenInvalid
    }
    if !tok.Valid {
        return nil, ErrTokenInvalid
    }
    return claims, nil
}
