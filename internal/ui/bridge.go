package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roomsync/internal/actors"
	"github.com/desertthunder/roomsync/internal/models"
)

var (
	_ actors.Navigator = (*Bridge)(nil)
	_ actors.Notifier  = (*Bridge)(nil)
	_ actors.Observer  = (*Bridge)(nil)
)

// Bridge queues supervisor callbacks as [Msg] values for a bubbletea program.
//
// Calls never block. Consecutive view changes are collapsed into the latest one; every other message is kept
// and delivered in call order by [Bridge.Run].
type Bridge struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

func (b *Bridge) push(msg Msg) {
	b.mu.Lock()
	if n := len(b.queue); n > 0 && msg.kind == MsgViewChanged {
		if last, ok := b.queue[n-1].(Msg); ok && last.kind == MsgViewChanged {
			b.queue[n-1] = msg
			b.mu.Unlock()
			return
		}
	}
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Run forwards queued messages to send until ctx is done. Pass [tea.Program.Send].
func (b *Bridge) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
		}

		b.mu.Lock()
		msgs := b.queue
		b.queue = nil
		b.mu.Unlock()

		for _, msg := range msgs {
			send(msg)
		}
	}
}

// Pending returns the number of queued messages.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bridge) ViewChanged(v actors.View) { b.push(viewChangedMsg(v)) }

func (b *Bridge) OpenCreationStep(step models.WizardStep) { b.push(openCreationStepMsg(step)) }
func (b *Bridge) CloseCreation()                          { b.push(Msg{kind: MsgCloseCreation}) }
func (b *Bridge) OpenRoom(roomID string)                  { b.push(openRoomMsg(roomID)) }
func (b *Bridge) NavigateBack()                           { b.push(Msg{kind: MsgNavigateBack}) }
func (b *Bridge) HideInvitation()                         { b.push(Msg{kind: MsgHideInvitation}) }

func (b *Bridge) NavigateAwayFromRoom(s models.RoomSummary) {
	b.push(summaryMsg(MsgNavigateAwayFromRoom, s))
}

func (b *Bridge) DisplayInvitation(s models.RoomSummary) {
	b.push(summaryMsg(MsgDisplayInvitation, s))
}

func (b *Bridge) Notify(n models.Notification) { b.push(notificationMsg(n)) }
