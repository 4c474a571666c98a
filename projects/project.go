package projects

// Project is the tenant boundary. Created once at bootstrap and treated
// as immutable afterwards by the token engine.
type Project struct {
	ID                        string   `json:"project_id"`
	Name                      string   `json:"project_name,omitempty"`
	Description               string   `json:"project_description,omitempty"`
	DefaultRegistrationScopes []string `json:"default_registration_scopes,omitempty"` // scope ids applied when a federated login creates a user
}
