package model

import (
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/domain/types"
)

// Turn is one message of a conversation transcript
type Turn struct {
	Role    types.Role
	Content string
}

// Conversation is the append-only transcript of one chat session.
//
// Turn order is fixed: an optional priming pair (system, assistant) followed by
// strictly alternating user and assistant turns starting from user.
type Conversation struct {
	SessionID string
	Turns     []Turn
	UpdatedAt time.Time
}

// NewConversation returns an empty transcript for sessionID
func NewConversation(sessionID string) *Conversation {
	return &Conversation{SessionID: sessionID}
}

// IsPrimed reports whether the priming pair is present
func (c *Conversation) IsPrimed() bool {
	return len(c.Turns) >= 2 &&
		c.Turns[0].Role == types.RoleSystem &&
		c.Turns[1].Role == types.RoleAssistant
}

// Prime returns a copy with the priming pair inserted. A transcript that already
// has turns is returned unchanged, so the pair is only ever inserted once.
func (c *Conversation) Prime(system, greeting string) *Conversation {
	next := c.Copy()
	if len(next.Turns) > 0 {
		return next
	}
	next.Turns = append(next.Turns,
		Turn{Role: types.RoleSystem, Content: system},
		Turn{Role: types.RoleAssistant, Content: greeting},
	)
	return next
}

// Append returns a copy with the turn appended. The receiver is not modified.
func (c *Conversation) Append(role types.Role, content string) (*Conversation, error) {
	want := c.nextRole()
	if role != want {
		return nil, goerr.Wrap(ErrRoleOrder, "unexpected role",
			goerr.V(RoleKey, role),
			goerr.V("expected", want),
			goerr.V("turns", len(c.Turns)),
		)
	}

	next := c.Copy()
	next.Turns = append(next.Turns, Turn{Role: role, Content: content})
	return next, nil
}

// nextRole returns the only role that may be appended. The priming pair is
// inserted by Prime and never through Append.
func (c *Conversation) nextRole() types.Role {
	if len(c.Turns) == 0 || !c.IsPrimed() {
		return types.RoleUser
	}
	if c.Turns[len(c.Turns)-1].Role == types.RoleUser {
		return types.RoleAssistant
	}
	return types.RoleUser
}

// Validate checks the role order of the whole transcript
func (c *Conversation) Validate() error {
	if len(c.Turns) == 0 {
		return nil
	}
	if !c.IsPrimed() {
		return goerr.Wrap(ErrRoleOrder, "transcript does not start with priming pair")
	}
	for i := 2; i < len(c.Turns); i++ {
		want := types.RoleUser
		if i%2 == 1 {
			want = types.RoleAssistant
		}
		if c.Turns[i].Role != want {
			return goerr.Wrap(ErrRoleOrder, "role order violated",
				goerr.V("index", i),
				goerr.V(RoleKey, c.Turns[i].Role),
			)
		}
	}
	return nil
}

// Exchanges returns the turns after the priming pair
func (c *Conversation) Exchanges() []Turn {
	if !c.IsPrimed() {
		return slices.Clone(c.Turns)
	}
	return slices.Clone(c.Turns[2:])
}

// Copy returns a deep copy
func (c *Conversation) Copy() *Conversation {
	return &Conversation{
		SessionID: c.SessionID,
		Turns:     slices.Clone(c.Turns),
		UpdatedAt: c.UpdatedAt,
	}
}
