// Package auth resolves the acting user of an API request.
//
// The middleware reads the session cookie, loads the session written by the
// sign-in service and reloads the user from the database, so role changes
// apply to running sessions. The user is stored in fiber.Locals:
//
//	app.Use(authmiddleware.New(db))
//	...
//	actor := authmiddleware.Actor(c)
//
// Requests without a valid session are rejected with 401.
package auth
