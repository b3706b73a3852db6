package roblox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
	}{
		{"ok", "builderman", nil},
		{"ok with underscore", "builder_man", nil},
		{"too short", "ab", ErrUserTooShort},
		{"two underscores", "a_b_c", ErrUserInvalid},
		{"leading underscore", "_abc", ErrUserInvalid},
		{"trailing underscore", "abc_", ErrUserInvalid},
		{"spaces", "a b c", ErrUserInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestUserByNameNoRequestOnInvalidInput(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()
	client := NewClient(server.URL, server.URL)

	_, err := client.UserByName(context.Background(), "ab")
	require.ErrorIs(t, err, ErrUserTooShort)
	_, err = client.UserByName(context.Background(), "no_t_valid")
	require.ErrorIs(t, err, ErrUserInvalid)
	assert.Zero(t, requests, "validation failures must not reach the network")
}

func TestUserErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
	}{
		{"not found", http.StatusNotFound, ErrUserNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad request", http.StatusBadRequest, ErrUserInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()
			client := NewClient(server.URL, server.URL)

			_, err := client.User(context.Background(), 1)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUserByNameResolvesProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":156,"name":"builderman"}]}`))
	})
	mux.HandleFunc("/users/156", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":156,"name":"builderman","displayName":"builderman","isBanned":false,"created":"2006-02-27T21:06:40.3Z"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := NewClient(server.URL, server.URL)

	user, err := client.UserByName(context.Background(), "builderman")
	require.NoError(t, err)
	assert.Equal(t, int64(156), user.ID)
	assert.Equal(t, "builderman", user.Name)
}

func TestUserByNameUnknownUsername(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := NewClient(server.URL, server.URL)

	_, err := client.UserByName(context.Background(), "ghostuser")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestAvatars(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/avatar", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "156", r.URL.Query().Get("userIds"))
		assert.Equal(t, "720x720", r.URL.Query().Get("size"))
		w.Write([]byte(`{"data":[{"targetId":156,"state":"Completed","imageUrl":"https://cdn.example/156.png"}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := NewClient(server.URL, server.URL)

	avatars, err := client.Avatars(context.Background(), []int64{156}, "720x720")
	require.NoError(t, err)
	require.Len(t, avatars, 1)
	assert.Equal(t, AvatarCompleted, avatars[0].State)
	assert.True(t, avatars[0].State.Transient() == false)
}
