// Package bootstrap seeds the store with the declarative project,
// client and scope configuration a deployment starts from. Seeding is an
// upsert: re-running it with the same config is harmless.
package bootstrap

import (
	"context"

	"github.com/noauthlabs/noauth-server/clients"
	"github.com/noauthlabs/noauth-server/projects"
	"github.com/noauthlabs/noauth-server/scopes"
	"github.com/pkg/errors"
)

type ScopeConfig struct {
	ScopeID     string `json:"scope_id"`
	Name        string `json:"scope_name,omitempty"`
	Description string `json:"scope_description,omitempty"`
}

type GrantScopesConfig struct {
	ClientCredentials []ScopeConfig `json:"client_credentials,omitempty"`
	UserCredentials   []ScopeConfig `json:"user_credentials,omitempty"`
}

type ClientConfig struct {
	ClientID    string            `json:"client_id"`
	Secret      string            `json:"client_secret"`
	Name        string            `json:"client_name,omitempty"`
	Description string            `json:"client_description,omitempty"`
	Scopes      GrantScopesConfig `json:"scopes"`
	// RefreshToken defaults to true when nil.
	RefreshToken *bool `json:"refresh_token,omitempty"`
}

type ProjectConfig struct {
	ProjectID                 string         `json:"project_id"`
	Name                      string         `json:"project_name,omitempty"`
	Description               string         `json:"project_description,omitempty"`
	DefaultRegistrationScopes []string       `json:"default_registration_scopes,omitempty"`
	Clients                   []ClientConfig `json:"clients"`
}

type Config struct {
	Projects []ProjectConfig `json:"projects"`
}

// Repos holds the store contracts seeding writes to.
type Repos struct {
	Projects projects.Repo
	Clients  clients.Repo
	Scopes   scopes.Catalog
}

// Initialize upserts every project, its scopes and its clients. Scope
// configs are deduplicated by scope_id; client scope lists are stored as
// resolved canonical refs.
func Initialize(ctx context.Context, repos Repos, config Config) error {
	if len(config.Projects) == 0 {
		return errors.New("[bootstrap.Initialize] config without projects")
	}

	for _, projectConfig := range config.Projects {
		if projectConfig.ProjectID == "" {
			return errors.New("[bootstrap.Initialize] project without project_id")
		}

		project := &projects.Project{
			ID:                        projectConfig.ProjectID,
			Name:                      projectConfig.Name,
			Description:               projectConfig.Description,
			DefaultRegistrationScopes: projectConfig.DefaultRegistrationScopes,
		}
		if _, err := repos.Projects.Upsert(ctx, project); err != nil {
			return errors.Wrapf(err, "[bootstrap.Initialize] upserting project %q", project.ID)
		}

		for _, clientConfig := range projectConfig.Clients {
			if err := initClient(ctx, repos, projectConfig.ProjectID, clientConfig); err != nil {
				return err
			}
		}
	}
	return nil
}

func initClient(ctx context.Context, repos Repos, projectID string, config ClientConfig) error {
	if config.ClientID == "" || config.Secret == "" {
		return errors.Errorf("[bootstrap.initClient] client under project %q needs client_id and client_secret", projectID)
	}

	clientCredentialRefs, err := upsertScopes(ctx, repos, projectID, config.Scopes.ClientCredentials)
	if err != nil {
		return errors.Wrapf(err, "[bootstrap.initClient] client %q client_credentials scopes", config.ClientID)
	}
	userCredentialRefs, err := upsertScopes(ctx, repos, projectID, config.Scopes.UserCredentials)
	if err != nil {
		return errors.Wrapf(err, "[bootstrap.initClient] client %q user_credentials scopes", config.ClientID)
	}

	refreshing := true
	if config.RefreshToken != nil {
		refreshing = *config.RefreshToken
	}

	client := &clients.Client{
		ID:          config.ClientID,
		Secret:      config.Secret,
		Name:        config.Name,
		Description: config.Description,
		ProjectID:   projectID,
		Scopes: clients.GrantScopes{
			ClientCredentials: clientCredentialRefs,
			UserCredentials:   userCredentialRefs,
		},
		HasRefreshingToken: refreshing,
	}
	if _, err := repos.Clients.Upsert(ctx, client); err != nil {
		return errors.Wrapf(err, "[bootstrap.initClient] upserting client %q", client.ID)
	}
	return nil
}

func upsertScopes(ctx context.Context, repos Repos, projectID string, configs []ScopeConfig) ([]scopes.Ref, error) {
	var refs []scopes.Ref
	seen := make(map[string]struct{}, len(configs))
	for _, config := range configs {
		if config.ScopeID == "" {
			return nil, errors.New("scope without scope_id")
		}
		if _, ok := seen[config.ScopeID]; ok {
			continue
		}
		seen[config.ScopeID] = struct{}{}

		scope, err := repos.Scopes.Upsert(ctx, &scopes.Scope{
			ID:          config.ScopeID,
			Name:        config.Name,
			Description: config.Description,
			ProjectID:   projectID,
		})
		if err != nil {
			return nil, err
		}
		refs = append(refs, scope.Ref)
	}
	return refs, nil
}
