// Package googleauth obtains a Google ID token through the standard OIDC
// authorization-code flow with a loopback redirect. The raw ID token is the
// credential the backend's third-party login endpoint expects; this package
// never talks to the Firmaboard backend itself.
package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	clienterrors "github.com/firmaboard/firmaboard-go/internal/errors"
)

// Authenticator runs the Google sign-in flow.
type Authenticator struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier

	// OnAuthURL receives the URL the user must open to grant consent.
	OnAuthURL func(url string)
}

// New discovers the provider and prepares the OAuth client.
func New(ctx context.Context, clientID, clientSecret, redirectURL, issuerURL string) (*Authenticator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("[googleauth.New] discover provider: %w", err)
	}

	return &Authenticator{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
		OnAuthURL: func(url string) {
			fmt.Printf("Open the following URL to sign in with Google:\n\n  %s\n\n", url)
		},
	}, nil
}

// SignIn walks the user through consent and returns the verified raw ID
// token. State and nonce are validated to reject replayed or injected
// callbacks.
func (a *Authenticator) SignIn(ctx context.Context) (string, error) {
	state := randomString(32)
	nonce := randomString(32)

	callback, err := a.awaitCallback(ctx, state)
	if err != nil {
		return "", err
	}

	a.OnAuthURL(a.oauth.AuthCodeURL(state, oidc.Nonce(nonce)))

	code, err := callback()
	if err != nil {
		return "", err
	}

	oauth2Token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("[Authenticator.SignIn] token exchange: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return "", clienterrors.ErrNoIDToken
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", fmt.Errorf("[Authenticator.SignIn] ID token verification: %w", err)
	}

	var claims struct {
		Nonce string `json:"nonce"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", fmt.Errorf("[Authenticator.SignIn] extract claims: %w", err)
	}
	if claims.Nonce != nonce {
		return "", clienterrors.ErrNonceMismatch
	}

	return rawIDToken, nil
}

type callbackResult struct {
	code string
	err  error
}

// awaitCallback starts the loopback listener for the redirect URL and
// returns a wait function yielding the authorization code.
func (a *Authenticator) awaitCallback(ctx context.Context, state string) (func() (string, error), error) {
	redirect, err := url.Parse(a.oauth.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("[Authenticator.awaitCallback] parse redirect URL: %w", err)
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if errParam := r.FormValue("error"); errParam != "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("authorization failed: %s - %s", errParam, r.FormValue("error_description"))}
			return
		}
		if r.FormValue("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			results <- callbackResult{err: clienterrors.ErrStateMismatch}
			return
		}
		code := r.FormValue("code")
		if code == "" {
			http.Error(w, "Missing code parameter", http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("missing code parameter")}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
		results <- callbackResult{code: code}
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			results <- callbackResult{err: fmt.Errorf("loopback listener: %w", err)}
		}
	}()

	return func() (string, error) {
		defer server.Close()
		select {
		case res := <-results:
			return res.code, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}, nil
}

func randomString(length int) string {
	bytes := make([]byte, length)
	_, _ = rand.Read(bytes)
	return base64.RawURLEncoding.EncodeToString(bytes)
}
