package client

import (
	"fmt"
	"net/http"
	"net/url"

	"scrimtime/pkg/model"
)

// SchedulerClient is the typed client the presentation layer (bot, web UI)
// uses to drive the scheduling engine over HTTP.
type SchedulerClient struct {
	http *HttpClient
}

func NewSchedulerClient(baseURL string) *SchedulerClient {
	return &SchedulerClient{http: NewHttpClient(baseURL)}
}

type sessionEnvelope struct {
	Data *model.SessionStatus `json:"data"`
}

func (c *SchedulerClient) StartSession(req model.StartSessionRequest) (*model.SessionStatus, error) {
	resp, err := c.http.POST("/api/v1/sessions", req)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp, http.StatusCreated)
}

func (c *SchedulerClient) SubmitSchedule(key, participant string, days map[string]model.DayInput) (*model.SessionStatus, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s/schedules/%s", url.PathEscape(key), url.PathEscape(participant))
	resp, err := c.http.PUT(path, model.SubmitScheduleRequest{Days: days})
	if err != nil {
		return nil, err
	}
	return decodeSession(resp, http.StatusOK)
}

func (c *SchedulerClient) RemoveSchedule(key, participant string) error {
	path := fmt.Sprintf("/api/v1/sessions/%s/schedules/%s", url.PathEscape(key), url.PathEscape(participant))
	resp, err := c.http.DELETE(path)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *SchedulerClient) Respond(key, participant string, accept bool) (*model.SessionStatus, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s/responses", url.PathEscape(key))
	resp, err := c.http.POST(path, model.RespondRequest{Participant: participant, Accept: accept})
	if err != nil {
		return nil, err
	}
	return decodeSession(resp, http.StatusOK)
}

func (c *SchedulerClient) RequestNextTime(key string) (*model.SessionStatus, error) {
	path := fmt.Sprintf("/api/v1/sessions/%s/next", url.PathEscape(key))
	resp, err := c.http.POST(path, nil)
	if err != nil {
		return nil, err
	}
	return decodeSession(resp, http.StatusOK)
}

func (c *SchedulerClient) CancelSession(key string) error {
	resp, err := c.http.DELETE("/api/v1/sessions/" + url.PathEscape(key))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func (c *SchedulerClient) Status(key string) (*model.SessionStatus, error) {
	resp, err := c.http.GET("/api/v1/sessions/" + url.PathEscape(key))
	if err != nil {
		return nil, err
	}
	return decodeSession(resp, http.StatusOK)
}

func decodeSession(resp *Response, want int) (*model.SessionStatus, error) {
	if resp.StatusCode != want {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	var env sessionEnvelope
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return env.Data, nil
}
