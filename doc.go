// Package blog implements a small blog backend (users, posts, categories)
// whose core is the authentication and authorization module.
//
// Authentication:
//   - Passwords are stored as bcrypt hashes (fresh salt per call) and verified
//     with ComparePasswordAndHash, which collapses every failure mode into a
//     single mismatch error so callers cannot distinguish "no such user" from
//     "wrong password".
//   - TokenService mints and validates stateless HS256 bearer tokens whose
//     subject is the username and whose expiry is now + the configured TTL.
//     There is no revocation list; tokens stay valid until they expire, but
//     the guard re-resolves the identity on every request so disabling an
//     account takes effect immediately.
//
// Authorization:
//   - Guard exposes three composable middleware stages: Protected (token is
//     valid and its subject resolves to a stored user), RequireActive, and
//     RequireSuperuser. Stages pass the resolved identity through unchanged
//     or terminate with a typed failure.
//   - CheckPermission implements the ownership rule used by mutating routes:
//     superusers may touch anything, everyone else only their own records.
package blog
