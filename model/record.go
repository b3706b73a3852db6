package model

import "encoding/json"

// Action is the moderation action attached to a record. ActionBanRequest is
// a sentinel used only on drafts: it marks a ban filed by an unprivileged
// moderator that must go through the approval channel instead.
type Action string

const (
	ActionBan        Action = "Ban"
	ActionKick       Action = "Kick"
	ActionWarning    Action = "Warning"
	ActionBanRequest Action = "Ban Request"
)

// RecordActions are the actions a persisted record may carry.
var RecordActions = []Action{ActionBan, ActionKick, ActionWarning}

// IsRecordAction reports whether the action can be persisted as a record.
func (a Action) IsRecordAction() bool {
	return a == ActionBan || a == ActionKick || a == ActionWarning
}

// Record is a persisted moderation action. Its id equals the id of the
// Discord message announcing it, so record and announcement can always be
// resolved from one another without a mapping table. Deleting one must
// delete the other.
type Record struct {
	ID        string `db:"id"`
	AuthorID  string `db:"author_id"`
	UserID    int64  `db:"user_id"`
	Reason    string `db:"reason"`
	Action    Action `db:"action"`
	CreatedAt int64  `db:"created_at"`
	// Editors is an append-only JSON array of the Discord user ids that
	// modified this record after creation.
	Editors string `db:"editors"`
}

// EditorList decodes the editors column. A record that was never edited
// yields an empty list.
func (r *Record) EditorList() []string {
	if r.Editors == "" {
		return nil
	}
	var editors []string
	if err := json.Unmarshal([]byte(r.Editors), &editors); err != nil {
		return nil
	}
	return editors
}

// BanRequestState tracks a ban request through the approval workflow.
type BanRequestState string

const (
	BanRequestPending  BanRequestState = "Pending"
	BanRequestRejected BanRequestState = "Rejected"
	BanRequestApproved BanRequestState = "Approved"
)

// BanRequest is a persisted ban awaiting approval. Like Record, its id is
// the id of its announcement message.
type BanRequest struct {
	ID        string          `db:"id"`
	AuthorID  string          `db:"author_id"`
	UserID    int64           `db:"user_id"`
	Reason    string          `db:"reason"`
	State     BanRequestState `db:"state"`
	CreatedAt int64           `db:"created_at"`
}
