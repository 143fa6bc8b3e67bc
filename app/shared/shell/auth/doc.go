// Package auth hashes admin passwords with bcrypt and issues and verifies the HS256 JWTs
// the API accepts as bearer tokens.
package auth
