package remote

import (
	"context"
	"net/http"
	"strings"

	"todoctl/internal/service"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the optional body of login/register.
type loginResponse struct {
	Token string `json:"token"`
}

// Login implements service.AuthService.
func (c *Client) Login(ctx context.Context, username, password string) (service.Session, error) {
	return c.authenticate(ctx, "/auth/login", username, password)
}

// Register implements service.AuthService.
func (c *Client) Register(ctx context.Context, username, password string) (service.Session, error) {
	return c.authenticate(ctx, "/auth/register", username, password)
}

func (c *Client) authenticate(ctx context.Context, endpoint, username, password string) (service.Session, error) {
	raw, err := c.Call(ctx, endpoint, http.MethodPost, credentials{Username: username, Password: password})
	if err != nil {
		return service.Session{}, err
	}

	token, expiry := c.jar.Token()
	if token == "" {
		// Cookie not delivered; fall back to the token echoed in the body.
		var body loginResponse
		if err := raw.Decode(&body); err == nil && body.Token != "" {
			c.jar.SetToken(body.Token)
			token = body.Token
		}
	}
	return service.Session{Token: token, Expiry: service.Timestamp{Time: expiry}}, nil
}

// Me implements service.AuthService.
// The backend answers with "Logged in as: <username>".
func (c *Client) Me(ctx context.Context) (string, error) {
	raw, err := c.Call(ctx, "/auth/me", http.MethodGet, nil)
	if err != nil {
		return "", err
	}
	return parseUsername(raw.Text()), nil
}

// Logout implements service.AuthService.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Call(ctx, "/auth/logout", http.MethodPost, nil)
	c.jar.Clear()
	return err
}

// Validate implements service.Validator with a lightweight "who am I" probe
// carrying token explicitly. A non-2xx answer means the session is invalid;
// a transport failure is returned as an error.
func (c *Client) Validate(ctx context.Context, token string) (bool, error) {
	req, err := c.newRequest(ctx, "/auth/me", http.MethodGet, nil)
	if err != nil {
		return false, err
	}
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

	if _, err := c.do(c.probe, req, "/auth/me"); err != nil {
		if service.IsNetwork(err) {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func parseUsername(body string) string {
	body = strings.Trim(strings.TrimSpace(body), `"`)
	if i := strings.LastIndex(body, ":"); i >= 0 {
		return strings.TrimSpace(body[i+1:])
	}
	return body
}
