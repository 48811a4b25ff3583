package google

import (
	"context"
	"fmt"
	"time"

	appcfg "focusdesk/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity содержит результат обмена кода авторизации: кто вошёл и его токены.
type Identity struct {
	GoogleID     string
	Email        string
	AccessToken  string
	RefreshToken string
}

// Client инкапсулирует OAuth-конфигурацию и вызовы Google API.
type Client struct {
	oauth      *oauth2.Config
	timeout    time.Duration
	maxResults int64
}

func NewClient(cfg appcfg.GoogleConfig, maxEvents int) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				calendar.CalendarReadonlyScope,
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
		timeout:    cfg.Timeout,
		maxResults: int64(maxEvents),
	}
}

// AuthURL строит ссылку на страницу согласия. access_type=offline и
// prompt=consent нужны, чтобы Google выдал refresh token.
func (c *Client) AuthURL(state string) string {
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange меняет код авторизации на токены и запрашивает профиль пользователя.
func (c *Client) Exchange(ctx context.Context, code string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("обмен кода авторизации: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(c.oauth.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("создание userinfo клиента: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("получение профиля пользователя: %w", err)
	}

	return &Identity{
		GoogleID:     info.Id,
		Email:        info.Email,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

func (c *Client) tokenSource(ctx context.Context, accessToken, refreshToken string) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if refreshToken != "" {
		// срок жизни access token нам неизвестен, поэтому помечаем его
		// истёкшим: TokenSource сам обменяет refresh token на свежий
		tok.Expiry = time.Now().Add(-time.Minute)
	}
	return c.oauth.TokenSource(ctx, tok)
}
