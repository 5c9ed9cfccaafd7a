// Package auth turns an opaque bearer token into a principal with a role.
//
// It supports two modes:
//   - "token": users log in with username/password at /api/auth/login and
//     receive a bearer token (default). Only its SHA-256 is stored.
//   - "none": no authentication; every caller acts as an administrator.
//
// # Configuration
//
//	AUTH_MODE=token                 # or none
//	AUTH_TOKEN_EXPIRY=720h          # bearer token lifetime (30 days default)
//	AUTH_BCRYPT_COST=12             # bcrypt cost factor
//	AUTH_ADMIN_PASSWORD=<secret>    # creates the first admin on an empty database
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//	admin := api.Group("", authMiddleware.RequireRole(entities.UserRoleAdmin))
package auth
