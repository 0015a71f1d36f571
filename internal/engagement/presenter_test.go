package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilejoteam/profilejo-website-sub000/internal/reasoning"
	"github.com/profilejoteam/profilejo-website-sub000/internal/scheduler"
)

func TestOutbox_DrainOrder(t *testing.T) {
	o := NewOutbox(0)
	o.ShowNotification(scheduler.Displayed{Candidate: scheduler.Candidate{ID: "a"}})
	o.OpenChat()
	o.OfferSuggestion(reasoning.Suggestion{Fields: map[string]any{"major": "Law"}})

	cmds := o.Drain()
	require.Len(t, cmds, 3)
	assert.Equal(t, uint64(1), cmds[0].Seq)
	assert.Equal(t, CommandOpenChat, cmds[1].Type)
	assert.Equal(t, CommandApplySuggestion, cmds[2].Type)
	assert.Equal(t, uint64(3), cmds[2].Seq)

	assert.Empty(t, o.Drain())
	assert.NotNil(t, o.Drain())
}

func TestOutbox_DropsOldest(t *testing.T) {
	o := NewOutbox(2)
	o.DismissNotification("a", DismissTimeout)
	o.DismissNotification("b", DismissTimeout)
	o.DismissNotification("c", DismissTimeout)

	cmds := o.Drain()
	require.Len(t, cmds, 2)
	assert.Equal(t, "b", cmds[0].ID)
	assert.Equal(t, "c", cmds[1].ID)
	assert.Equal(t, uint64(3), cmds[1].Seq)
}
