// Package auth provides authentication and authorisation for FleetWAN Core.
//
// It implements a 2-tier role model (user → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived JWT access tokens (HS256, validated by signature only)
//   - First-boot admin seeding with a generated one-time password
//
// The role gates exactly one thing beyond user management: whether network
// security data (credentials, tokens) is returned unredacted. Everything
// else is available to both roles.
package auth
