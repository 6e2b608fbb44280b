package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"

	"streamdraw/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer     = "https://accounts.google.com"
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 300
)

var (
	providerMu     sync.Mutex
	googleProvider *oidc.Provider
)

// provider discovers Google's OIDC configuration once. A failed discovery is
// retried on the next sign-in.
func provider(ctx context.Context) (*oidc.Provider, error) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if googleProvider != nil {
		return googleProvider, nil
	}
	p, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, err
	}
	googleProvider = p
	return p, nil
}

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GOOGLE_CLIENT_ID,
		ClientSecret: config.GOOGLE_CLIENT_SECRET,
		RedirectURL:  config.GOOGLE_REDIRECT_URL,
		Scopes:       []string{oidc.ScopeOpenID, "email"},
		Endpoint:     google.Endpoint,
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func GoogleStart(c *gin.Context) {
	if config.GOOGLE_CLIENT_ID == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
		return
	}

	state, err := randomToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate state"})
		return
	}
	nonce, err := randomToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate nonce"})
		return
	}

	// state and nonce travel together; base64url never contains '.'
	c.SetCookie(oauthStateCookie, state+"."+nonce, oauthStateTTL, "/", "",
		strings.HasPrefix(config.BASE_URL, "https://"), true)

	url := googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline, oidc.Nonce(nonce))
	c.Redirect(http.StatusFound, url)
}

// GET /auth/google/callback signs in operators listed in ADMIN_EMAILS.
func GoogleCallback(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in cancelled: " + reason})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code/state"})
		return
	}

	stored, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)
	wantState, nonce, found := strings.Cut(stored, ".")
	if err != nil || !found || wantState != state {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth state"})
		return
	}

	ctx := c.Request.Context()
	tok, err := googleOAuthConfig().Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to exchange code"})
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing id_token"})
		return
	}

	claims, err := verifyGoogleIDToken(ctx, rawIDToken, nonce)
	if err != nil {
		log.Printf("❌ google id_token rejected: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if !claims.EmailVerified || !IsAdminEmail(claims.Email) {
		log.Printf("❌ google sign-in refused for %q", claims.Email)
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	token, err := IssueAdminToken(claims.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}
	setTokenCookie(c, AdminCookie, token, adminTokenTTL)
	log.Printf("✅ admin %s signed in with Google", claims.Email)

	c.Redirect(http.StatusFound, config.ADMIN_REDIRECT)
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func verifyGoogleIDToken(ctx context.Context, rawIDToken, nonce string) (*googleIDClaims, error) {
	p, err := provider(ctx)
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}

	idToken, err := p.Verifier(&oidc.Config{ClientID: config.GOOGLE_CLIENT_ID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}
	if idToken.Nonce != nonce {
		return nil, errors.New("id_token nonce mismatch")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}
	return &claims, nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS, ignoring case.
func IsAdminEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	for _, allowed := range config.ADMIN_EMAILS {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}
