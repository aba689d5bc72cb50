package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/panelmgmt/pms-core/config"
)

// CaptchaVerifier validates a client-side challenge response before an
// unauthenticated action is allowed to send email.
type CaptchaVerifier interface {
	Verify(ctx context.Context, responseToken string) (bool, error)
}

const recaptchaSiteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type recaptchaVerifier struct {
	secret     string
	httpClient *http.Client
}

func NewCaptchaVerifier(cfg *config.Config) CaptchaVerifier {
	return &recaptchaVerifier{secret: cfg.RecaptchaSecretKey, httpClient: http.DefaultClient}
}

func (v *recaptchaVerifier) Verify(ctx context.Context, responseToken string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", responseToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recaptchaSiteVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("recaptcha siteverify request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("recaptcha siteverify decode failed: %w", err)
	}
	return payload.Success, nil
}
