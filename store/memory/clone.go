package memory

import (
	"github.com/noauthlabs/noauth-server/clients"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/noauthlabs/noauth-server/sessions"
	"github.com/noauthlabs/noauth-server/users"
)

// Rows are cloned on every read and write so that callers never share
// memory with the store, matching the semantics of a real document store.

func cloneProject(p *projects.Project) *projects.Project {
	c := *p
	c.DefaultRegistrationScopes = append([]string(nil), p.DefaultRegistrationScopes...)
	return &c
}

func cloneClient(cl *clients.Client) *clients.Client {
	c := *cl
	c.Scopes.ClientCredentials = append([]scopes.Ref(nil), cl.Scopes.ClientCredentials...)
	c.Scopes.UserCredentials = append([]scopes.Ref(nil), cl.Scopes.UserCredentials...)
	return &c
}

func cloneScope(s *scopes.Scope) *scopes.Scope {
	c := *s
	return &c
}

func cloneUser(u *users.User) *users.User {
	c := *u
	c.Scopes = append([]scopes.Ref(nil), u.Scopes...)
	if u.Social != nil {
		c.Social = make(map[string]*users.SocialProfile, len(u.Social))
		for provider, profile := range u.Social {
			cp := *profile
			c.Social[provider] = &cp
		}
	}
	return &c
}

func cloneSession(s *sessions.Session) *sessions.Session {
	c := *s
	c.Scopes = append([]scopes.Ref(nil), s.Scopes...)
	if s.UUID != nil {
		uuid := *s.UUID
		c.UUID = &uuid
	}
	return &c
}
