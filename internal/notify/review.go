package notify

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/store"
)

// ReviewNotifier pushes a notification to a family's admins when a child's
// completion lands in the review queue.
type ReviewNotifier struct {
	pusher  *Pusher
	members *store.MemberStore
	tasks   *store.TaskStore
	push    *store.PushStore
	logger  *slog.Logger
}

func NewReviewNotifier(pusher *Pusher, members *store.MemberStore, tasks *store.TaskStore, push *store.PushStore, logger *slog.Logger) *ReviewNotifier {
	return &ReviewNotifier{
		pusher:  pusher,
		members: members,
		tasks:   tasks,
		push:    push,
		logger:  logger,
	}
}

// CompletionPending notifies admins about one pending completion. Failures
// are logged, never propagated; a missed notification must not fail the
// completion itself.
func (n *ReviewNotifier) CompletionPending(c model.Completion) {
	member, err := n.members.GetByID(c.MemberID)
	if err != nil || member == nil {
		n.logger.Warn("review notify: load member", "member_id", c.MemberID, "error", err)
		return
	}
	task, err := n.tasks.GetByID(c.TaskID)
	if err != nil || task == nil {
		n.logger.Warn("review notify: load task", "task_id", c.TaskID, "error", err)
		return
	}

	subs, err := n.push.ListAdminsByFamily(member.FamilyID)
	if err != nil {
		n.logger.Warn("review notify: list subscriptions", "error", err)
		return
	}

	payload := Payload{
		Title: "Completion to review",
		Body:  fmt.Sprintf("%s finished %q and is waiting for approval", member.Nickname, task.Title),
		URL:   "/review",
		Tag:   fmt.Sprintf("completion-%d", c.ID),
	}

	for i := range subs {
		sub := &subs[i]
		if err := n.pusher.Send(sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := n.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Warn("review notify: drop expired subscription", "error", err)
				}
				continue
			}
			n.logger.Warn("review notify: send", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
