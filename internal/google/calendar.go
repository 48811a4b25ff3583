package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrAuthRequired означает, что сохранённые токены отклонены и нужен повторный логин.
var ErrAuthRequired = errors.New("учётные данные Google недействительны")

// ErrUnavailable означает, что календарь недоступен (сеть, квота, таймаут).
var ErrUnavailable = errors.New("календарь Google недоступен")

// Event описывает событие календаря в том виде, в котором его видит синхронизация.
type Event struct {
	ID    string
	Title string
	Start *time.Time
}

// ListUpcomingEvents возвращает ближайшие события основного календаря:
// не больше maxResults, повторяющиеся развёрнуты в конкретные экземпляры,
// упорядочены по времени начала.
func (c *Client) ListUpcomingEvents(ctx context.Context, accessToken, refreshToken string) ([]Event, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	srv, err := calendar.NewService(ctx,
		option.WithTokenSource(c.tokenSource(ctx, accessToken, refreshToken)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	res, err := srv.Events.List("primary").
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(c.maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, Event{
			ID:    item.Id,
			Title: item.Summary,
			Start: parseStart(item.Start),
		})
	}
	return events, nil
}

// classify переводит ошибки транспорта в таксономию синхронизации
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return fmt.Errorf("%w: %v", ErrAuthRequired, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// неудачный refresh токена приходит как RetrieveError
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// parseStart поддерживает обе формы начала события: date-time и date-only
func parseStart(start *calendar.EventDateTime) *time.Time {
	if start == nil {
		return nil
	}
	if start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
			return &t
		}
	}
	if start.Date != "" {
		if t, err := time.Parse("2006-01-02", start.Date); err == nil {
			return &t
		}
	}
	return nil
}
