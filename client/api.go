package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// API is the server surface the session depends on. Tests substitute an
// in-memory implementation; production uses the resty-backed HTTPAPI.
type API interface {
	ListConversations(ctx context.Context) ([]Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	OpenBusinessConversation(ctx context.Context, businessID string) (*Conversation, error)
	OpenDirectConversation(ctx context.Context, userID string) (*Conversation, error)
	ListMessages(ctx context.Context, conversationID string, page, size int) ([]Message, error)
	SendMessage(ctx context.Context, conversationID string, input SendInput) (*Message, error)
	MarkRead(ctx context.Context, conversationID string) error
	Profiles(ctx context.Context, ids []string) (map[string]Profile, error)
}

type HTTPAPI struct {
	rc *resty.Client
}

func NewHTTPAPI(baseURL, accessToken string) *HTTPAPI {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(accessToken).
		SetTimeout(15 * time.Second)
	return &HTTPAPI{rc: rc}
}

func (a *HTTPAPI) ListConversations(ctx context.Context) ([]Conversation, error) {
	var out []Conversation
	resp, err := a.rc.R().SetContext(ctx).SetResult(&out).
		Get("/api/v1/conversations")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *HTTPAPI) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var out Conversation
	resp, err := a.rc.R().SetContext(ctx).SetResult(&out).
		Get("/api/v1/conversations/" + id)
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAPI) OpenBusinessConversation(ctx context.Context, businessID string) (*Conversation, error) {
	var out Conversation
	resp, err := a.rc.R().SetContext(ctx).
		SetBody(map[string]string{"business_id": businessID}).
		SetResult(&out).
		Post("/api/v1/conversations/business")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAPI) OpenDirectConversation(ctx context.Context, userID string) (*Conversation, error) {
	var out Conversation
	resp, err := a.rc.R().SetContext(ctx).
		SetBody(map[string]string{"user_id": userID}).
		SetResult(&out).
		Post("/api/v1/conversations/direct")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAPI) ListMessages(ctx context.Context, conversationID string, page, size int) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	resp, err := a.rc.R().SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("size", strconv.Itoa(size)).
		SetResult(&out).
		Get("/api/v1/conversations/" + conversationID + "/messages")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (a *HTTPAPI) SendMessage(ctx context.Context, conversationID string, input SendInput) (*Message, error) {
	var out Message
	resp, err := a.rc.R().SetContext(ctx).
		SetBody(input).
		SetResult(&out).
		Post("/api/v1/conversations/" + conversationID + "/messages")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *HTTPAPI) MarkRead(ctx context.Context, conversationID string) error {
	resp, err := a.rc.R().SetContext(ctx).
		Post("/api/v1/conversations/" + conversationID + "/read")
	return checkResp(resp, err)
}

func (a *HTTPAPI) Profiles(ctx context.Context, ids []string) (map[string]Profile, error) {
	out := map[string]Profile{}
	if len(ids) == 0 {
		return out, nil
	}
	resp, err := a.rc.R().SetContext(ctx).
		SetQueryParam("ids", strings.Join(ids, ",")).
		SetResult(&out).
		Get("/api/v1/profiles")
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func checkResp(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrNotAuthenticated
	}
	return fmt.Errorf("api: %s: %s", resp.Request.URL, resp.Status())
}
