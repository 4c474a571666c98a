package auth

// Request is the normalized inbound grant request the dispatcher
// consumes. The transport layer is responsible for producing it from
// whatever framing it uses.
type Request struct {
	Method        string
	Body          Body
	Authorization Authorization
}

// Body carries the grant-relevant fields of the request body. AccessToken
// and IDToken are the federated credentials of the facebook_token and
// google_token grants respectively.
type Body struct {
	GrantType    string `json:"grant_type"`
	Login        string `json:"login,omitempty"`
	Password     string `json:"password,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// Authorization holds the parsed Authorization header.
type Authorization struct {
	Basic  *BasicCredentials
	Bearer string
}

type BasicCredentials struct {
	ClientID     string
	ClientSecret string
}
