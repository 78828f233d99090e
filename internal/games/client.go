package games

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	apperrors "codeberg.org/gamevault/server/internal/errors"
	"codeberg.org/gamevault/server/internal/upstream"
)

// name used in logs and upstream errors
const serviceName = "games provider"

var gameIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// creates a provider client; an empty baseURL yields a client whose calls
// fail with a configuration error
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...upstream.Option) *Client {
	base := []upstream.Option{
		upstream.WithTimeout(timeout),
		upstream.WithRateLimit(20, 40),
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    upstream.New(serviceName, append(base, opts...)...),
	}
}

// reports whether a game id is well formed
func ValidGameID(id string) bool {
	return gameIDPattern.MatchString(id)
}

// returns the enabled games in the provider catalog
func (c *Client) ListGames(ctx context.Context) ([]Game, error) {
	if c.baseURL == "" {
		return nil, notConfigured()
	}

	var resp listGamesResponse

	err := c.http.DoJSON(ctx, upstream.Request{
		Op:      "list games",
		Method:  http.MethodGet,
		URL:     c.baseURL + "/games",
		Headers: c.headers(),
	}, &resp)
	if err != nil {
		return nil, providerError(err)
	}

	games := make([]Game, 0, len(resp.Games))
	for _, g := range resp.Games {
		if g.Enabled {
			games = append(games, g)
		}
	}

	return games, nil
}

// opens a provider session for the player
func (c *Client) Launch(ctx context.Context, gameID, userID, currency string) (*LaunchSession, error) {
	if c.baseURL == "" {
		return nil, notConfigured()
	}

	if !ValidGameID(gameID) {
		return nil, apperrors.NewSafe(apperrors.CodeInvalidIdentifier, apperrors.WithDetail("field", "id"))
	}

	var session LaunchSession

	err := c.http.DoJSON(ctx, upstream.Request{
		Op:      "launch game",
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/games/%s/sessions", c.baseURL, url.PathEscape(gameID)),
		Headers: c.headers(),
		Body:    launchRequest{PlayerID: userID, Currency: currency},
	}, &session)
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode == http.StatusGone) {
			return nil, apperrors.NewSafe(apperrors.CodeGameUnavailable,
				apperrors.WithStatus(http.StatusNotFound),
				apperrors.WithCause(err),
			)
		}

		return nil, providerError(err)
	}

	if session.URL == "" {
		return nil, apperrors.NewExternalServiceError(serviceName, false,
			apperrors.WithCause(errors.New("launch response without url")))
	}

	if session.GameID == "" {
		session.GameID = gameID
	}

	return &session, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}

	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// timeouts and upstream statuses keep their type for the normalizer;
// anything else the provider did wrong is reported as unavailable
func providerError(err error) error {
	var timeoutErr *upstream.TimeoutError
	var statusErr *upstream.StatusError

	if errors.As(err, &timeoutErr) || errors.As(err, &statusErr) {
		return err
	}

	return apperrors.NewExternalServiceError(serviceName, false, apperrors.WithCause(err))
}

func notConfigured() error {
	return apperrors.NewConfigurationError("GAMES_PROVIDER_URL")
}
