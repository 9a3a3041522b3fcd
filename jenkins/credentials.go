package jenkins

import (
	"context"
	"net/url"
)

// Credential is a secret-text credential from the Jenkins system credential
// store.
type Credential struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

// GetCredential fetches a credential from the global domain of the system
// credential store by its ID.
func (c *Client) GetCredential(ctx context.Context, id string) (*Credential, *Response, error) {
	u := "credentials/store/system/domain/_/credential/" + url.PathEscape(id) + "/api/json"

	req, err := c.newRequest(ctx, "GET", u, nil)
	if err != nil {
		return nil, nil, err
	}

	credential := &Credential{}
	resp, err := c.doRequest(req, credential)
	if err != nil {
		return nil, resp, err
	}

	return credential, resp, nil
}
