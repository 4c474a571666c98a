package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/noauthlabs/noauth-server/auth"
)

// parseAuthorization normalizes the Authorization header into the
// basic/bearer shape the dispatcher consumes. Anything malformed parses
// to empty credentials, which the verifiers reject.
func parseAuthorization(r *http.Request) auth.Authorization {
	var parsed auth.Authorization

	header := r.Header.Get("Authorization")
	if header == "" {
		return parsed
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return parsed
	}

	switch strings.ToLower(parts[0]) {
	case "basic":
		decoded, err := base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return parsed
		}
		clientID, clientSecret, ok := strings.Cut(string(decoded), ":")
		if !ok {
			return parsed
		}
		parsed.Basic = &auth.BasicCredentials{ClientID: clientID, ClientSecret: clientSecret}
	case "bearer":
		parsed.Bearer = parts[1]
	}
	return parsed
}
