package roblox

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// User is the profile returned by the users API.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	IsBanned    bool      `json:"isBanned"`
}

// SearchResult is a single hit from the username search API.
type SearchResult struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	DisplayName       string   `json:"displayName"`
	PreviousUsernames []string `json:"previousUsernames"`
}

// AvatarState describes the render state of a user's avatar thumbnail.
type AvatarState string

const (
	AvatarCompleted              AvatarState = "Completed"
	AvatarPending                AvatarState = "Pending"
	AvatarError                  AvatarState = "Error"
	AvatarTemporarilyUnavailable AvatarState = "TemporarilyUnavailable"
	AvatarBlocked                AvatarState = "Blocked"
	AvatarInReview               AvatarState = "InReview"
)

// Transient reports whether the state may resolve on a retry.
func (s AvatarState) Transient() bool {
	return s == AvatarPending || s == AvatarTemporarilyUnavailable || s == AvatarError
}

// Avatar is a single entry from the thumbnails API.
type Avatar struct {
	TargetID int64       `json:"targetId"`
	State    AvatarState `json:"state"`
	ImageURL string      `json:"imageUrl"`
}

// Usernames are word characters with at most one interior underscore.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:_[A-Za-z0-9]+)?$`)

// ValidateUsername checks a username candidate without touching the
// network. It returns ErrUserTooShort or ErrUserInvalid on rejection.
func ValidateUsername(name string) error {
	if len(name) < 3 {
		return ErrUserTooShort
	}
	if !usernamePattern.MatchString(name) {
		return ErrUserInvalid
	}
	return nil
}

// User returns detailed information about a user by id.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	var user User
	if err := c.get(ctx, fmt.Sprintf("%s/users/%d", c.userAPI, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserByName resolves a username to a full profile. The name is validated
// before any request is made.
func (c *Client) UserByName(ctx context.Context, name string) (*User, error) {
	if err := ValidateUsername(name); err != nil {
		return nil, err
	}

	var resolved struct {
		Data []struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	payload := map[string]any{
		"usernames":          []string{name},
		"excludeBannedUsers": false,
	}
	if err := c.post(ctx, c.userAPI+"/usernames/users", payload, &resolved); err != nil {
		return nil, err
	}
	if len(resolved.Data) == 0 {
		return nil, ErrUserNotFound
	}
	return c.User(ctx, resolved.Data[0].ID)
}

// Search looks up users by username keyword. No pagination support.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]SearchResult, error) {
	if len(keyword) < 3 {
		return nil, ErrUserTooShort
	}
	query := url.Values{
		"keyword": {keyword},
		"limit":   {strconv.Itoa(limit)},
	}
	var result struct {
		Data []SearchResult `json:"data"`
	}
	if err := c.get(ctx, c.userAPI+"/users/search?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// Avatars returns full avatar thumbnails for the given user ids.
func (c *Client) Avatars(ctx context.Context, ids []int64, size string) ([]Avatar, error) {
	joined := make([]string, len(ids))
	for i, id := range ids {
		joined[i] = strconv.FormatInt(id, 10)
	}
	query := url.Values{
		"userIds":    {strings.Join(joined, ",")},
		"size":       {size},
		"format":     {"Png"},
		"isCircular": {"false"},
	}
	var result struct {
		Data []Avatar `json:"data"`
	}
	if err := c.get(ctx, c.thumbnailAPI+"/users/avatar?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}
