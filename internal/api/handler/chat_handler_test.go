package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/evchat/chat-gateway/internal/core/domain"
)

func TestChatHandler_Submit_JSON(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{
		submitFn: func(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error) {
			if username != "alice" || prompt != "Hello" || att != nil {
				t.Fatalf("unexpected args: %s %s %v", username, prompt, att)
			}
			return "Hi there", nil
		},
	}
	handler := NewChatHandler(chat)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"prompt":"Hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	if err := handler.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["reply"] != "Hi there" {
		t.Fatalf("unexpected reply: %v", resp["reply"])
	}
}

func TestChatHandler_Submit_MissingPrompt(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{
		submitFn: func(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	handler := NewChatHandler(chat)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	err := handler.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestChatHandler_Submit_NoClaims(t *testing.T) {
	e := newTestEcho()
	handler := NewChatHandler(&stubChatService{})

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func multipartBody(t *testing.T, prompt string, imageName, imageMIME string, imageBytes []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("prompt", prompt); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if imageName != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+imageName+`"`)
		header.Set("Content-Type", imageMIME)
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(imageBytes); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, w.FormDataContentType()
}

func TestChatHandler_Submit_MultipartWithImage(t *testing.T) {
	e := newTestEcho()
	imageBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	chat := &stubChatService{
		submitFn: func(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error) {
			if prompt != "what is this?" {
				t.Fatalf("unexpected prompt: %q", prompt)
			}
			if att == nil || att.MIMEType != "image/png" || !bytes.Equal(att.Bytes, imageBytes) {
				t.Fatalf("attachment not bound: %+v", att)
			}
			return "a PNG header", nil
		},
	}
	handler := NewChatHandler(chat)

	body, contentType := multipartBody(t, "what is this?", "pic.png", "image/png", imageBytes)
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	if err := handler.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestChatHandler_Submit_RejectsUnsupportedImageType(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{
		submitFn: func(ctx context.Context, username, prompt string, att *domain.Attachment) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	handler := NewChatHandler(chat)

	body, contentType := multipartBody(t, "q", "notes.pdf", "application/pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/chat/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	err := handler.Submit(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestChatHandler_History(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{
		turns: []domain.Turn{
			{Role: domain.RoleUser, Text: "Hello"},
			{Role: domain.RoleModel, Text: "Hi there"},
		},
	}
	handler := NewChatHandler(chat)

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	if err := handler.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Turns []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Turns) != 2 || resp.Turns[0].Role != "user" || resp.Turns[1].Text != "Hi there" {
		t.Fatalf("unexpected history payload: %+v", resp.Turns)
	}
}

func TestChatHandler_Reset(t *testing.T) {
	e := newTestEcho()
	chat := &stubChatService{}
	handler := NewChatHandler(chat)

	req := httptest.NewRequest(http.MethodDelete, "/chat/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "alice")

	if err := handler.Reset(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if chat.resets != 1 {
		t.Fatalf("reset not forwarded")
	}
}
