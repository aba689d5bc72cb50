package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/panelmgmt/pms-core/internal/auth"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/notify"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// TokenService handles both login paths: Google sign-in for students and
// admins, and an emailed magic link for panelists.
type TokenService interface {
	// ExchangeGoogleToken verifies a Google id token and issues an internal
	// token for the matching account. Unknown emails are rejected.
	ExchangeGoogleToken(ctx context.Context, idToken string) (string, error)
	// RequestPanelLogin emails a magic login link to a panelist after a
	// captcha check. The link carries a regular internal token.
	RequestPanelLogin(ctx context.Context, email, captchaToken, callerURL string) error
}

type tokenService struct {
	userRepo repository.UserRepository
	manager  *auth.Manager
	google   auth.GoogleVerifier
	captcha  auth.CaptchaVerifier
	notifier notify.Notifier
	now      func() time.Time
}

func NewTokenService(
	userRepo repository.UserRepository,
	manager *auth.Manager,
	google auth.GoogleVerifier,
	captcha auth.CaptchaVerifier,
	notifier notify.Notifier,
) TokenService {
	return &tokenService{
		userRepo: userRepo,
		manager:  manager,
		google:   google,
		captcha:  captcha,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *tokenService) ExchangeGoogleToken(ctx context.Context, idToken string) (string, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: google token rejected", ErrValidation)
	}

	user, err := s.userByEmail(identity.Email)
	if err != nil {
		return "", err
	}

	token, err := s.manager.Issue(user.ID, user.Email, identity.Name, identity.Picture, user.Role)
	if err != nil {
		return "", fmt.Errorf("%w: issuing token: %v", ErrUpstream, err)
	}

	s.touchLastLogin(user)
	return token, nil
}

func (s *tokenService) RequestPanelLogin(ctx context.Context, email, captchaToken, callerURL string) error {
	ok, err := s.captcha.Verify(ctx, captchaToken)
	if err != nil {
		return fmt.Errorf("%w: captcha verification: %v", ErrUpstream, err)
	}
	if !ok {
		return fmt.Errorf("%w: captcha rejected", ErrValidation)
	}

	if _, err := url.ParseRequestURI(callerURL); err != nil {
		return fmt.Errorf("%w: callerUrl must be a valid URL", ErrValidation)
	}

	user, err := s.userByEmail(email)
	if err != nil {
		return err
	}
	if user.Role != model.RolePanelist {
		return fmt.Errorf("%w: magic-link login is panelist only", ErrForbidden)
	}

	token, err := s.manager.Issue(user.ID, user.Email, user.FirstName+" "+user.LastName, "", user.Role)
	if err != nil {
		return fmt.Errorf("%w: issuing token: %v", ErrUpstream, err)
	}

	link := fmt.Sprintf("%s/verify?token=%s", callerURL, url.QueryEscape(token))
	htmlBody := fmt.Sprintf(
		"<p>Hello %s,</p><p>Click <a href=%q>here</a> to sign in to your panel dashboard. The link expires with the token.</p>",
		user.FirstName, link,
	)
	textBody := fmt.Sprintf("Hello %s,\n\nSign in to your panel dashboard: %s\n", user.FirstName, link)

	if err := s.notifier.Send(ctx, user.Email, "Your panel sign-in link", htmlBody, textBody); err != nil {
		return fmt.Errorf("%w: sending login email: %v", ErrUpstream, err)
	}

	s.touchLastLogin(user)
	log.Info().Str("email", email).Msg("Panelist login link sent")
	return nil
}

func (s *tokenService) userByEmail(email string) (*model.User, error) {
	users, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up %s: %v", ErrUpstream, email, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no account for %s", ErrNotFound, email)
	}
	return &users[0], nil
}

func (s *tokenService) touchLastLogin(user *model.User) {
	now := s.now()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to update last login")
	}
}
