package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPendingBanRequestExists is returned by the store when creating a ban
// request for a subject that already has one pending.
var ErrPendingBanRequestExists = errors.New("a pending ban request already exists for this user")

// Int64 is an int64 that marshals as a tagged string ("i64:<decimal>") so
// identifiers above the float64 safe-integer range survive JSON transports
// that read numbers as floating point. Plain JSON numbers are still
// accepted on decode.
type Int64 int64

const int64Tag = "i64:"

func (v Int64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + int64Tag + strconv.FormatInt(int64(v), 10) + `"`), nil
}

func (v *Int64) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("tagged int64: %w", err)
		}
		tagged, ok := strings.CutPrefix(s, int64Tag)
		if !ok {
			return fmt.Errorf("tagged int64: missing %q prefix in %q", int64Tag, s)
		}
		n, err := strconv.ParseInt(tagged, 10, 64)
		if err != nil {
			return fmt.Errorf("tagged int64: %w", err)
		}
		*v = Int64(n)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("tagged int64: %w", err)
	}
	*v = Int64(n)
	return nil
}

// Draft is the cached intermediate state of a moderation action between the
// initiating command and its confirmation button. It lives in the cachestore
// keyed by requesting user and prompt message id, and is consumed exactly
// once.
type Draft struct {
	SubjectID        Int64  `json:"subjectId"`
	SubjectName      string `json:"subjectName"`
	SubjectAvatarURL string `json:"subjectAvatarUrl,omitempty"`
	Reason           string `json:"reason"`
	Action           Action `json:"action"`
	// WarningCount is the subject's warning total snapshotted when the
	// draft was created.
	WarningCount int `json:"warningCount"`
}

// EditDraft stages a pending reason or action edit of an existing record.
type EditDraft struct {
	RecordID  string `json:"recordId"`
	SubjectID Int64  `json:"subjectId"`
}

// DeleteDraft stages a pending record deletion awaiting its second,
// explicit confirmation.
type DeleteDraft struct {
	RecordID string `json:"recordId"`
}
