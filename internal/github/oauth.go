package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// DeviceGrantType is the OAuth grant type of the device authorization flow.
const DeviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// RequestDeviceCode starts a device authorization.
func (c *Client) RequestDeviceCode(ctx context.Context, clientID, scope string) (*DeviceCode, error) {
	r := c.web(http.MethodPost, "/login/device/code")
	r.form = url.Values{
		"client_id": {clientID},
		"scope":     {scope},
	}
	var out DeviceCode
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollDeviceToken asks once whether the user has approved deviceCode.
// Pending approval is reported in the response's Error field, not as a
// Go error.
func (c *Client) PollDeviceToken(ctx context.Context, clientID, deviceCode string) (*AccessTokenResponse, error) {
	r := c.web(http.MethodPost, "/login/oauth/access_token")
	r.form = url.Values{
		"client_id":   {clientID},
		"device_code": {deviceCode},
		"grant_type":  {DeviceGrantType},
	}
	var out AccessTokenResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CodeExchange carries the parameters of a PKCE authorization-code exchange.
type CodeExchange struct {
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// ExchangeCode trades an authorization code for an access token. A non-2xx
// status, an empty body or a body without a token is an error.
func (c *Client) ExchangeCode(ctx context.Context, in CodeExchange) (*AccessTokenResponse, error) {
	r := c.web(http.MethodPost, "/login/oauth/access_token")
	r.form = url.Values{
		"client_id":     {in.ClientID},
		"client_secret": {in.ClientSecret},
		"code":          {in.Code},
		"redirect_uri":  {in.RedirectURI},
		"code_verifier": {in.CodeVerifier},
	}
	var out AccessTokenResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if out.Error != "" {
		msg := out.ErrorDescription
		if msg == "" {
			msg = out.Error
		}
		return nil, fmt.Errorf("exchanging authorization code: %s", msg)
	}
	if out.AccessToken == "" {
		return nil, errors.New("exchanging authorization code: no access token in response")
	}
	return &out, nil
}

// RevokeToken deletes an OAuth token using the app's client credentials.
func (c *Client) RevokeToken(ctx context.Context, clientID, clientSecret, token string) error {
	path := fmt.Sprintf("/applications/%s/token", url.PathEscape(clientID))
	r := c.api(http.MethodDelete, path, "")
	r.basicUser, r.basicPass = clientID, clientSecret
	r.body = map[string]string{"access_token": token}
	return c.do(ctx, r, nil)
}

// AuthorizeURL builds the browser URL of the authorization-code flow.
func (c *Client) AuthorizeURL(clientID, redirectURI, state, codeChallenge string) string {
	q := url.Values{
		"client_id":             {clientID},
		"redirect_uri":          {redirectURI},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return c.webURL + "/login/oauth/authorize?" + q.Encode()
}
