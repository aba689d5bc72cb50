package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/panelmgmt/pms-core/config"
)

// ExternalIdentity is what the upstream identity provider asserts about the
// caller. The provider is a consumed black box; only these fields matter.
type ExternalIdentity struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates third-party Google id tokens.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*ExternalIdentity, error)
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

type googleVerifier struct {
	clientID   string
	httpClient *http.Client
}

func NewGoogleVerifier(cfg *config.Config) GoogleVerifier {
	return &googleVerifier{clientID: cfg.GoogleClientID, httpClient: http.DefaultClient}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var payload struct {
		Aud     string `json:"aud"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("google tokeninfo decode failed: %w", err)
	}
	if v.clientID != "" && payload.Aud != v.clientID {
		return nil, errors.New("token audience does not match client id")
	}
	return &ExternalIdentity{Email: payload.Email, Name: payload.Name, Picture: payload.Picture}, nil
}
