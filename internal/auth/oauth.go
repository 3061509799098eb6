package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIBaseURL = "https://api.github.com"

// GitHubUser is the portion of the GitHub /user API response we care about.
//
// GitHub API docs: https://docs.github.com/en/rest/users/users#get-the-authenticated-user
type GitHubUser struct {
	ID    int64  `json:"id"`    // GitHub's numeric user ID
	Login string `json:"login"` // GitHub username
	Email string `json:"email"` // Primary email; empty on /user if hidden in GitHub settings
}

// githubEmail is one entry of GET /user/emails.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code flow.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. We redirect the user to GitHub's authorization endpoint with our
//     ClientID, the requested scopes and a random state.
//  2. The user approves on GitHub.
//  3. GitHub redirects back to the callback URL with a short-lived "code".
//  4. We exchange the code for an access token (server-to-server, using the
//     ClientSecret) and call the GitHub API for the user's profile.
type GitHubProvider struct {
	config     *oauth2.Config
	apiBaseURL string
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
//
// callbackURL must match the "Authorization callback URL" of the OAuth App
// exactly, e.g. "http://localhost:8080/auth/github/callback".
//
// Scopes:
//   - "read:user":  the user's public profile
//   - "user:email": the user's email addresses, including hidden ones
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: githubAPIBaseURL,
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// STATE PARAMETER:
// The caller stores state in a cookie before redirecting and compares it with
// the state GitHub sends back. A mismatch means the callback was not started
// by this browser (CSRF).
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// GitHub user's profile.
//
// The blog identifies users by email, so the returned user always has one.
// When the profile hides it, Exchange falls back to the primary verified
// address from /user/emails, and fails if there is none.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client adds "Authorization: Bearer <token>" to every request.
	client := p.config.Client(ctx, oauthToken)

	var ghUser GitHubUser
	if err := getJSON(ctx, client, p.apiBaseURL+"/user", &ghUser); err != nil {
		return nil, err
	}
	if ghUser.ID == 0 {
		return nil, errors.New("auth: GitHub returned an invalid user (ID = 0)")
	}

	if ghUser.Email == "" {
		var emails []githubEmail
		if err := getJSON(ctx, client, p.apiBaseURL+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				ghUser.Email = e.Email
				break
			}
		}
	}
	if ghUser.Email == "" {
		return nil, fmt.Errorf("auth: GitHub user %s has no verified primary email", ghUser.Login)
	}

	return &ghUser, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("auth: building GitHub request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: calling GitHub %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: GitHub %s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("auth: decoding GitHub %s response: %w", url, err)
	}
	return nil
}
