package share

import (
	"time"

	"github.com/fabiobenigni/Sa-Ndo-Ka-sub000/internal/catalog"
)

// Grant gives an invitee a capability over a collection. A grant is
// pending until accepted; invites to identities that resolve to an
// existing account are accepted immediately.
type Grant struct {
	ID              int64              `json:"id"`
	CollectionID    int64              `json:"collectionId"`
	InviteeIdentity string             `json:"inviteeIdentity"`
	InviteeUserID   *int64             `json:"inviteeUserId,omitempty"`
	Capability      catalog.Capability `json:"-"`
	CapabilityName  string             `json:"capability"`
	Accepted        bool               `json:"accepted"`
	InviterUserID   int64              `json:"inviterUserId"`
	InviteMethod    string             `json:"inviteMethod"`
	InviteToken     string             `json:"-"`
	CreatedAt       time.Time          `json:"createdAt"`
	AcceptedAt      *time.Time         `json:"acceptedAt,omitempty"`
}

type InviteRequest struct {
	CollectionID    int64  `json:"collectionId"`
	InviteeIdentity string `json:"inviteeIdentity"`
	Capability      string `json:"capability"`
	InviteMethod    string `json:"inviteMethod,omitempty"`
}
