// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/clinicctl/internal/apierr"
)

func newTestHTTP(t *testing.T, h http.HandlerFunc, opts ...Option) *HTTP {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tr, err := NewHTTP(srv.URL+"/api", opts...)
	require.NoError(t, err)
	return tr
}

func TestNewHTTP(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "full url", base: "http://localhost:5000/api", want: "http://localhost:5000/api"},
		{name: "bare host", base: "clinic.example.com", want: "https://clinic.example.com/api"},
		{name: "empty", base: "", wantErr: true},
		{name: "bad scheme", base: "ftp://clinic.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewHTTP(tt.base)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBaseURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.BaseURL.String())
			assert.Equal(t, DefaultTimeout, tr.Client.Timeout)
		})
	}
}

func TestHTTP_GetMergesQuery(t *testing.T) {
	var got *http.Request
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"doctors":[]}`))
	}, WithToken("s3cret"))

	resp, err := tr.Get(context.Background(), "/cached/doctors?search=ann", Request{
		Params: url.Values{"department_id": {"4"}},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"doctors":[]}`, string(resp.Data))
	n, ok := resp.ContentLength()
	assert.True(t, ok)
	assert.Equal(t, int64(len(`{"doctors":[]}`)), n)

	require.NotNil(t, got)
	assert.Equal(t, "/api/cached/doctors", got.URL.Path)
	assert.Equal(t, "ann", got.URL.Query().Get("search"))
	assert.Equal(t, "4", got.URL.Query().Get("department_id"))
	assert.Equal(t, "Bearer s3cret", got.Header.Get("Authorization"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestHTTP_PostEncodesBody(t *testing.T) {
	var body map[string]any
	var contentType string
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"task_id":"t-1","status":"PENDING"}`))
	})

	resp, err := tr.Post(context.Background(), "/tasks/export/doctor-appointments", Request{
		Body: map[string]string{"start_date": "2025-01-01", "end_date": "2025-01-31"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, resp.Status)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]any{"start_date": "2025-01-01", "end_date": "2025-01-31"}, body)
}

func TestHTTP_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
		hasMsg  bool
	}{
		{name: "structured", body: `{"error":"Redis unavailable"}`, wantMsg: "Redis unavailable", hasMsg: true},
		{name: "plain text", body: `internal error`},
		{name: "empty error field", body: `{"error":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := tr.Post(context.Background(), "/cached/cache/clear", Request{})
			assert.Nil(t, resp)
			require.Error(t, err)

			var terr *Error
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, http.StatusInternalServerError, terr.Status)
			assert.ErrorIs(t, err, apierr.ErrTransport)

			msg, ok := terr.ServerMessage()
			assert.Equal(t, tt.hasMsg, ok)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestHTTP_BinaryUntouched(t *testing.T) {
	raw := []byte("id,name\n1,\xff\xfe\n")
	var accept string
	tr := newTestHTTP(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write(raw)
	})

	resp, err := tr.Get(context.Background(), "/tasks/download/7", Request{ResponseType: Binary})
	require.NoError(t, err)
	assert.Equal(t, raw, resp.Data)
	assert.Contains(t, accept, "octet-stream")
}

func TestHTTP_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	tr, err := NewHTTP(base, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = tr.Get(context.Background(), "/cached/departments", Request{})
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 0, terr.Status)
	assert.Equal(t, apierr.KindTransport, apierr.KindOf(err))
}

func TestResponse_ContentLength(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int64
		ok     bool
	}{
		{name: "absent", header: ""},
		{name: "valid", header: "1234", want: 1234, ok: true},
		{name: "garbage", header: "lots"},
		{name: "negative", header: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Header: http.Header{}}
			if tt.header != "" {
				r.Header.Set("Content-Length", tt.header)
			}
			n, ok := r.ContentLength()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}
