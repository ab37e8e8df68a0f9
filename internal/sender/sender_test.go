package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubcorra/internal/config"
)

func TestSMSSenderPostsToGateway(t *testing.T) {
	var got smsRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSMSSender(config.SMSConfig{APIURL: srv.URL, APIKey: "k3y", SenderID: "CLBCRA"})
	err := s.Send(context.Background(), Message{To: "+919876543210", Body: "Your code is 123456"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer k3y", auth)
	assert.Equal(t, "CLBCRA", got.SenderID)
	assert.Equal(t, "+919876543210", got.To)
	assert.Equal(t, "Your code is 123456", got.Message)
}

func TestSMSSenderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad number"}`))
	}))
	defer srv.Close()

	s := NewSMSSender(config.SMSConfig{APIURL: srv.URL})
	err := s.Send(context.Background(), Message{To: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSMSSenderDoesNotResendAfterTimeout(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release // Accepted, but the answer comes too late
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	defer close(release)

	s := NewSMSSender(config.SMSConfig{APIURL: srv.URL})
	s.client.SetTimeout(100 * time.Millisecond)
	err := s.Send(context.Background(), Message{To: "+919876543210", Body: "Your code is 123456"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load(), "the gateway saw the message exactly once")
}

func TestSMSSenderServerErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSMSSender(config.SMSConfig{APIURL: srv.URL})
	assert.ErrorContains(t, s.Send(context.Background(), Message{To: "x", Body: "y"}), "503")
	assert.Equal(t, int32(1), hits.Load())
}

func TestEmailSenderUsesSendGridAPI(t *testing.T) {
	var path, auth, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewEmailSender(config.EmailConfig{SendGridAPIKey: "SG.key", From: "no-reply@clubcorra.com", FromName: "Club Corra"}, srv.URL)
	err := s.Send(context.Background(), Message{To: "a@b.com", Subject: "Verify", Body: "Your code is 654321"})
	require.NoError(t, err)
	assert.Equal(t, "/v3/mail/send", path)
	assert.Equal(t, "Bearer SG.key", auth)
	assert.True(t, strings.Contains(body, "a@b.com"))
	assert.True(t, strings.Contains(body, "654321"))
}

func TestEmailSenderRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewEmailSender(config.EmailConfig{SendGridAPIKey: "bad"}, srv.URL)
	assert.Error(t, s.Send(context.Background(), Message{To: "a@b.com", Subject: "s", Body: "b"}))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{Channel: "sms"}.Send(context.Background(), Message{To: "1", Body: "2"}))
}
