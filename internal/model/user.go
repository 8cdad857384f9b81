package model

import "time"

// Role values accepted by the registration endpoint.  Anything else is
// coerced to RoleCustomer.
const (
    RoleCustomer = "customer"
    RoleAdmin    = "admin"
)

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository layer in API
// responses; handlers define separate response types with JSON tags that
// omit it.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Name      – display name.
//  Email     – unique email address.
//  Password  – bcrypt hashed password.
//  Role      – "customer" or "admin".
//  Avatar    – URI of the profile image.
//  CreatedAt – timestamp of creation.
type User struct {
    ID        uint64    // users.id
    Name      string    // users.name
    Email     string    // users.email
    Password  string    // users.password (bcrypt hash)
    Role      string    // users.role
    Avatar    string    // users.avatar
    CreatedAt time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each row is
// one revocable session extension: created at login or refresh, deleted on
// logout, on rotation, or when a refresh attempt finds it expired.  The
// token column stores the signed JWT string itself and carries a UNIQUE
// constraint, which is what makes concurrent rotation safe.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – signed refresh JWT as handed to the client.
//  ExpiresAt – absolute expiry mirrored from the token's exp claim.
type RefreshToken struct {
    ID        uint64    // refresh_tokens.id
    UserID    uint64    // refresh_tokens.user_id
    Token     string    // refresh_tokens.token
    ExpiresAt time.Time // refresh_tokens.expires_at
}
