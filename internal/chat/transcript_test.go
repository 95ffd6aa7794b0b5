package chat

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/geminichat/internal/models"
)

func TestTranscript_AppendAndReplaceLast(t *testing.T) {
	tr := NewTranscript()
	assert.Equal(t, 0, tr.Len())

	_, ok := tr.Last()
	assert.False(t, ok)

	tr.Append(models.UserTurn("hi"))
	tr.Append(models.PendingTurn())
	assert.Equal(t, 1, tr.PendingCount())

	require.NoError(t, tr.ReplaceLast(models.BotTurn("hello")))
	assert.Equal(t, []models.Turn{
		{Sender: models.SenderUser, Text: "hi"},
		{Sender: models.SenderBot, Text: "hello"},
	}, tr.Turns())
	assert.Equal(t, 0, tr.PendingCount())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Text)
}

func TestTranscript_ReplaceLastOnEmpty(t *testing.T) {
	tr := NewTranscript()
	assert.ErrorIs(t, tr.ReplaceLast(models.BotTurn("x")), ErrEmptyTranscript)
	assert.Equal(t, 0, tr.Len())
}

func TestTranscript_TurnsIsACopy(t *testing.T) {
	tr := NewTranscript(models.UserTurn("a"))
	turns := tr.Turns()
	turns[0].Text = "changed"

	last, _ := tr.Last()
	assert.Equal(t, "a", last.Text)
}

func TestTranscript_ObserverSeesEveryChange(t *testing.T) {
	var snapshots [][]models.Turn
	tr := NewTranscript().WithObserver(func(turns []models.Turn) {
		snapshots = append(snapshots, turns)
	})

	tr.Append(models.UserTurn("hi"))
	tr.Append(models.PendingTurn())
	require.NoError(t, tr.ReplaceLast(models.BotTurn("hello")))

	require.Len(t, snapshots, 3)
	assert.Len(t, snapshots[0], 1)
	assert.True(t, snapshots[1][1].IsPending())
	assert.Equal(t, "hello", snapshots[2][1].Text)
}

func TestTranscript_ConcurrentAccess(t *testing.T) {
	tr := NewTranscript()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Append(models.UserTurn("x"))
		}()
		go func() {
			defer wg.Done()
			_ = tr.Turns()
			_ = tr.PendingCount()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, tr.Len())
}
