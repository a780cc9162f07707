package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

type stubAuthService struct {
	verifyFn func(ctx context.Context, username, password string) (domain.SessionIdentity, error)
	loginFn  func(ctx context.Context, username, password string) (string, domain.SessionIdentity, error)
}

func (s *stubAuthService) Verify(ctx context.Context, username, password string) (domain.SessionIdentity, error) {
	return s.verifyFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, domain.SessionIdentity, error) {
	return s.loginFn(ctx, username, password)
}

type stubChatService struct {
	opened    []domain.SessionIdentity
	loggedOut string
	submitFn  func(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error)
	turns     []domain.Turn
	resets    int
}

func (s *stubChatService) Open(identity domain.SessionIdentity) {
	s.opened = append(s.opened, identity)
}

func (s *stubChatService) Submit(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error) {
	return s.submitFn(ctx, username, prompt, att)
}

func (s *stubChatService) History(username string) ([]domain.Turn, error) {
	return s.turns, nil
}

func (s *stubChatService) Reset(username string) error {
	s.resets++
	return nil
}

func (s *stubChatService) Logout(username string) {
	s.loggedOut = username
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	auth := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, domain.SessionIdentity, error) {
			if username != "alice" || password != "secret123" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", domain.SessionIdentity{Username: "alice", DisplayName: "Alice Smith"}, nil
		},
	}
	chat := &stubChatService{}
	handler := NewAuthHandler(auth, chat)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"secret123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["name"] != "Alice Smith" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if len(chat.opened) != 1 || chat.opened[0].Username != "alice" {
		t.Fatalf("session not opened: %+v", chat.opened)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	auth := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, domain.SessionIdentity, error) {
			t.Fatalf("should not be called")
			return "", domain.SessionIdentity{}, nil
		},
	}
	handler := NewAuthHandler(auth, &stubChatService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login_BadCredentialsPropagate(t *testing.T) {
	e := newTestEcho()
	auth := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, domain.SessionIdentity, error) {
			return "", domain.SessionIdentity{}, domain.ErrBadPassword
		},
	}
	chat := &stubChatService{}
	handler := NewAuthHandler(auth, chat)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != domain.ErrBadPassword {
		t.Fatalf("expected ErrBadPassword to propagate to the error handler, got %v", err)
	}
	if len(chat.opened) != 0 {
		t.Fatalf("no session should be opened on failure")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{}
	handler := NewAuthHandler(&stubAuthService{}, chat)

	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if chat.loggedOut != "alice" {
		t.Fatalf("logout not forwarded: %q", chat.loggedOut)
	}
}
