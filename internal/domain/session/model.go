package session

import "time"

// Lifetime is how long an admin login stays valid.
const Lifetime = 8 * time.Hour

// Context is the admin authentication state carried by one browser session.
// It has two states: unauthenticated (zero value) and authenticated.
// INVARIANT: Authenticated implies LoginTime is set; unauthenticated implies LoginTime is zero
type Context struct {
	Authenticated bool
	Username      string
	LoginTime     time.Time
}

// Login marks the context as authenticated at now.
// POST: Authenticated is true, LoginTime == now
func (c *Context) Login(username string, now time.Time) {
	c.Authenticated = true
	c.Username = username
	c.LoginTime = now
}

// Check reports whether the context is still authenticated at now.
// A login older than Lifetime reverts the context to unauthenticated.
// POST: if now - LoginTime > Lifetime, the flag and timestamp are cleared
func (c *Context) Check(now time.Time) bool {
	if !c.Authenticated || c.LoginTime.IsZero() {
		c.Logout()
		return false
	}
	if now.Sub(c.LoginTime) > Lifetime {
		c.Logout()
		return false
	}
	return true
}

// Logout clears the authentication state.
// POST: c is the zero Context
func (c *Context) Logout() {
	*c = Context{}
}

// ExpiresAt returns when the current login lapses, or the zero time if unauthenticated.
func (c *Context) ExpiresAt() time.Time {
	if !c.Authenticated {
		return time.Time{}
	}
	return c.LoginTime.Add(Lifetime)
}
