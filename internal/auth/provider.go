// Package auth implements OAuth 2.0 authorization-code login and the session
// tokens issued after it.
//
// A login moves through these states:
//
//	initiated   state token minted and remembered with its provider and expiry
//	redirected  authorization URL handed to the browser
//	callback    code and state received; the state is checked and consumed
//	exchanged   code traded for an access token, server to server
//	session     user info fetched, saved, and a signed session token issued
package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// Provider names.
const (
	ProviderGoogle    = "google"
	ProviderGitHub    = "github"
	ProviderMicrosoft = "microsoft"
)

// UserMapper turns a provider's user-info response into an AuthUser.
type UserMapper func(raw []byte) (domain.AuthUser, error)

// Provider is one OAuth identity provider.
type Provider struct {
	Name        string
	Config      oauth2.Config
	UserInfoURL string
	MapUser     UserMapper
}

// Credentials are the client settings shared by every built-in provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google returns the Google provider.
func Google(c Credentials) *Provider {
	return &Provider{
		Name:        ProviderGoogle,
		Config:      config(c, endpoints.Google, "openid", "email", "profile"),
		UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		MapUser:     mapGoogleUser,
	}
}

// GitHub returns the GitHub provider.
func GitHub(c Credentials) *Provider {
	return &Provider{
		Name:        ProviderGitHub,
		Config:      config(c, endpoints.GitHub, "read:user", "user:email"),
		UserInfoURL: "https://api.github.com/user",
		MapUser:     mapGitHubUser,
	}
}

// Microsoft returns the Microsoft identity platform provider (any tenant).
func Microsoft(c Credentials) *Provider {
	return &Provider{
		Name:        ProviderMicrosoft,
		Config:      config(c, endpoints.AzureAD("common"), "openid", "email", "profile", "User.Read"),
		UserInfoURL: "https://graph.microsoft.com/v1.0/me",
		MapUser:     mapMicrosoftUser,
	}
}

func config(c Credentials, ep oauth2.Endpoint, scopes ...string) oauth2.Config {
	return oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     ep,
		Scopes:       scopes,
	}
}

// ---- user info mapping -----------------------------------------------------

func mapGoogleUser(raw []byte) (domain.AuthUser, error) {
	var u struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.AuthUser{}, fmt.Errorf("decode google user: %w", err)
	}
	first, last := u.GivenName, u.FamilyName
	if first == "" && last == "" {
		first, last = splitName(u.Name)
	}
	return domain.AuthUser{
		ID: u.ID, FirstName: first, LastName: last, Email: u.Email,
		Picture: u.Picture, Provider: ProviderGoogle, Verified: u.VerifiedEmail,
	}, nil
}

func mapGitHubUser(raw []byte) (domain.AuthUser, error) {
	var u struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.AuthUser{}, fmt.Errorf("decode github user: %w", err)
	}
	first, last := splitName(u.Name)
	if first == "" {
		first = u.Login
	}
	return domain.AuthUser{
		ID: strconv.FormatInt(u.ID, 10), FirstName: first, LastName: last, Email: u.Email,
		Picture: u.AvatarURL, Provider: ProviderGitHub, Verified: u.Email != "",
	}, nil
}

func mapMicrosoftUser(raw []byte) (domain.AuthUser, error) {
	var u struct {
		ID                string `json:"id"`
		GivenName         string `json:"givenName"`
		Surname           string `json:"surname"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.AuthUser{}, fmt.Errorf("decode microsoft user: %w", err)
	}
	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}
	return domain.AuthUser{
		ID: u.ID, FirstName: u.GivenName, LastName: u.Surname, Email: email,
		Provider: ProviderMicrosoft, Verified: u.Mail != "",
	}, nil
}

// splitName splits "Ada King Lovelace" into "Ada" and "King Lovelace".
func splitName(full string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(full), " ")
	return first, strings.TrimSpace(rest)
}
