package points

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/williamwmy/fantastic-task/internal/model"
	"github.com/williamwmy/fantastic-task/internal/store"
)

// Engine applies and reverses task completions against member point
// balances. The ledger is the source of truth: every balance change sums
// the transactions tagged with the specific completion, never the
// completion's informational points_awarded field.
//
// All balance-affecting operations for a member are serialized by a
// per-member mutex, so each read-modify-write sees the previous write.
type Engine struct {
	families    *store.FamilyStore
	members     *store.MemberStore
	tasks       *store.TaskStore
	assignments *store.AssignmentStore
	completions *store.CompletionStore
	ledger      *store.LedgerStore
	logger      *slog.Logger

	now func() time.Time

	// notify is invoked with the affected member after every mutation so
	// the UI layer can refresh. onPending fires when a completion enters
	// review.
	notify    func(memberID int64)
	onPending func(model.Completion)

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewEngine(families *store.FamilyStore, members *store.MemberStore, tasks *store.TaskStore, assignments *store.AssignmentStore, completions *store.CompletionStore, ledger *store.LedgerStore, logger *slog.Logger) *Engine {
	return &Engine{
		families:    families,
		members:     members,
		tasks:       tasks,
		assignments: assignments,
		completions: completions,
		ledger:      ledger,
		logger:      logger,
		now:         time.Now,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// SetNotify registers the change observer. Safe to leave unset.
func (e *Engine) SetNotify(fn func(memberID int64)) {
	e.notify = fn
}

// SetPendingHook registers a callback fired when a completion is held for
// verification. Safe to leave unset.
func (e *Engine) SetPendingHook(fn func(model.Completion)) {
	e.onPending = fn
}

// SetClock overrides the wall clock; tests use this to pin "now".
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) memberLock(memberID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[memberID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[memberID] = l
	}
	return l
}

func (e *Engine) notifyChanged(memberID int64) {
	if e.notify != nil {
		e.notify(memberID)
	}
}

// CompleteRequest describes a UI-originated "complete task" action.
// Date is a YYYY-MM-DD calendar date; empty means today. AssignmentID
// links a pre-existing assignment; when nil one is auto-created with the
// completion date as its due date.
type CompleteRequest struct {
	TaskID           int64
	MemberID         int64
	Date             string
	Comment          string
	TimeSpentMinutes *int
	BonusPoints      int
	AssignmentID     *int64
}

// CompleteResult is what a completion produced. Pending results carry no
// transactions and an unchanged balance.
type CompleteResult struct {
	Completion   *model.Completion
	Transactions []model.PointsTransaction
	NewBalance   int
	Pending      bool
}

// CompleteTask records a completion for a task. Depending on the family's
// verification policy and the member's role it either applies ledger
// transactions immediately or parks the completion in pending state.
func (e *Engine) CompleteTask(req CompleteRequest) (*CompleteResult, error) {
	if req.BonusPoints < 0 {
		return nil, fmt.Errorf("%w: bonus points must not be negative", ErrInvalidInput)
	}

	task, err := e.tasks.GetByID(req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %d", ErrNotFound, req.TaskID)
	}
	if !task.Active {
		return nil, fmt.Errorf("%w: task %d is not active", ErrInvalidInput, req.TaskID)
	}

	member, err := e.members.GetByID(req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, req.MemberID)
	}
	if member.FamilyID != task.FamilyID {
		return nil, fmt.Errorf("%w: task belongs to another family", ErrPermissionDenied)
	}

	family, err := e.families.GetByID(member.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	if family == nil {
		return nil, fmt.Errorf("%w: family %d", ErrNotFound, member.FamilyID)
	}

	now := e.now()
	dateStr := req.Date
	if dateStr == "" {
		dateStr = now.Format("2006-01-02")
	}
	completedAt, err := ResolveCompletionTime(dateStr, now)
	if err != nil {
		return nil, err
	}

	assignmentID := req.AssignmentID
	if assignmentID != nil {
		assignment, err := e.assignments.GetByID(*assignmentID)
		if err != nil {
			return nil, fmt.Errorf("load assignment: %w", err)
		}
		if assignment == nil {
			return nil, fmt.Errorf("%w: assignment %d", ErrNotFound, *assignmentID)
		}
		if assignment.TaskID != task.ID {
			return nil, fmt.Errorf("%w: assignment %d is for another task", ErrInvalidInput, *assignmentID)
		}
	} else {
		// Auto-assignment: due date follows the completion date, not today.
		assignment, err := e.assignments.Create(task.ID, &member.ID, completedAt.Format("2006-01-02"), true)
		if err != nil {
			return nil, fmt.Errorf("auto-create assignment: %w", err)
		}
		assignmentID = &assignment.ID
	}

	status := InitialStatus(family.RequireChildVerification, member.Role)

	completion, err := e.completions.Create(store.CompletionParams{
		TaskID:           task.ID,
		AssignmentID:     assignmentID,
		MemberID:         member.ID,
		CompletedAt:      completedAt,
		BasePoints:       task.Points,
		BonusPoints:      req.BonusPoints,
		Comment:          req.Comment,
		TimeSpentMinutes: req.TimeSpentMinutes,
		Status:           string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}

	if err := e.assignments.SetCompleted(*assignmentID, true); err != nil {
		return nil, fmt.Errorf("mark assignment completed: %w", err)
	}

	if status == StatusPending {
		e.logger.Info("completion held for verification",
			"completion_id", completion.ID, "task_id", task.ID, "member_id", member.ID)
		if e.onPending != nil {
			e.onPending(*completion)
		}
		e.notifyChanged(member.ID)
		return &CompleteResult{Completion: completion, NewBalance: member.PointsBalance, Pending: true}, nil
	}

	transactions, newBalance, err := e.applyApproved(*completion, task.Title, StatusApproved)
	if err != nil {
		return nil, err
	}

	e.notifyChanged(member.ID)
	return &CompleteResult{
		Completion:   completion,
		Transactions: transactions,
		NewBalance:   newBalance,
	}, nil
}

// applyApproved records the earned (and bonus) transactions for a
// completion and increments the member's balance by their ledger sum.
// The amounts come from the completion's base/bonus snapshot, and the
// store's status guard (checked against fromStatus inside the write
// transaction) ensures the completion is credited at most once even
// when two verifiers race past the pre-checks.
func (e *Engine) applyApproved(completion model.Completion, taskTitle string, fromStatus Status) ([]model.PointsTransaction, int, error) {
	base := completion.BasePoints
	entries := []store.Entry{{
		Points:          &base,
		TransactionType: model.TxEarned,
		Description:     "Completed " + taskTitle,
	}}
	if completion.BonusPoints > 0 {
		bonus := completion.BonusPoints
		entries = append(entries, store.Entry{
			BonusPoints:     &bonus,
			TransactionType: model.TxBonus,
			Description:     "Bonus for " + taskTitle,
		})
	}

	lock := e.memberLock(completion.MemberID)
	lock.Lock()
	defer lock.Unlock()

	member, err := e.members.GetByID(completion.MemberID)
	if err != nil {
		return nil, 0, fmt.Errorf("load member: %w", err)
	}
	if member == nil {
		return nil, 0, fmt.Errorf("%w: member %d", ErrNotFound, completion.MemberID)
	}

	total := completion.BasePoints
	if completion.BonusPoints > 0 {
		total += completion.BonusPoints
	}

	newBalance := member.PointsBalance + total
	transactions, err := e.ledger.ApplyCompletion(member.ID, completion.ID, string(fromStatus), entries, newBalance)
	if errors.Is(err, store.ErrCompletionResolved) {
		return nil, 0, fmt.Errorf("%w: completion %d was already resolved", ErrConflict, completion.ID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("apply completion: %w", err)
	}

	e.logger.Info("points applied",
		"completion_id", completion.ID, "member_id", member.ID,
		"amount", total, "balance", newBalance)
	return transactions, newBalance, nil
}

// UndoCompletion reverses a completion. The amount subtracted is the sum
// of the ledger rows tagged with the completion id, clamped so the
// balance never goes negative. The transactions, the completion, and an
// orphaned auto-created assignment are removed.
func (e *Engine) UndoCompletion(completionID int64) (int, error) {
	completion, err := e.completions.GetByID(completionID)
	if err != nil {
		return 0, fmt.Errorf("load completion: %w", err)
	}
	if completion == nil {
		return 0, fmt.Errorf("%w: completion %d", ErrNotFound, completionID)
	}

	lock := e.memberLock(completion.MemberID)
	lock.Lock()
	defer lock.Unlock()

	member, err := e.members.GetByID(completion.MemberID)
	if err != nil {
		return 0, fmt.Errorf("load member: %w", err)
	}
	if member == nil {
		return 0, fmt.Errorf("%w: member %d", ErrNotFound, completion.MemberID)
	}

	transactions, err := e.ledger.ListByCompletion(completionID)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}

	var total int
	for _, t := range transactions {
		total += t.Total()
	}

	newBalance := member.PointsBalance - total
	if newBalance < 0 {
		newBalance = 0
	}

	if err := e.ledger.ReverseCompletion(member.ID, completionID, completion.AssignmentID, newBalance); err != nil {
		return 0, fmt.Errorf("reverse completion: %w", err)
	}

	e.logger.Info("completion undone",
		"completion_id", completionID, "member_id", member.ID,
		"amount", total, "balance", newBalance)
	e.notifyChanged(member.ID)
	return newBalance, nil
}

// VerifyCompletion resolves a pending completion. Only admins and
// ordinary members of the same family may verify; children may not.
// Approving creates the ledger transactions and applies them; rejecting
// leaves the completion on record with no point effect.
func (e *Engine) VerifyCompletion(completionID int64, approved bool, actor model.Member) (*CompleteResult, error) {
	if actor.Role == model.RoleChild {
		return nil, fmt.Errorf("%w: children cannot verify completions", ErrPermissionDenied)
	}

	completion, err := e.completions.GetByID(completionID)
	if err != nil {
		return nil, fmt.Errorf("load completion: %w", err)
	}
	if completion == nil {
		return nil, fmt.Errorf("%w: completion %d", ErrNotFound, completionID)
	}

	member, err := e.members.GetByID(completion.MemberID)
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	if member == nil {
		return nil, fmt.Errorf("%w: member %d", ErrNotFound, completion.MemberID)
	}
	if actor.FamilyID != member.FamilyID {
		return nil, fmt.Errorf("%w: completion belongs to another family", ErrPermissionDenied)
	}

	next := StatusRejected
	if approved {
		next = StatusApproved
	}
	if !Status(completion.Status).CanTransition(next) {
		return nil, fmt.Errorf("%w: completion %d is %s", ErrConflict, completionID, completion.Status)
	}

	if !approved {
		changed, err := e.completions.UpdateStatusFrom(completionID, string(StatusPending), string(StatusRejected))
		if err != nil {
			return nil, fmt.Errorf("reject completion: %w", err)
		}
		if !changed {
			return nil, fmt.Errorf("%w: completion %d was already resolved", ErrConflict, completionID)
		}
		e.logger.Info("completion rejected",
			"completion_id", completionID, "member_id", member.ID, "verified_by", actor.ID)
		e.notifyChanged(member.ID)
		return &CompleteResult{Completion: completion, NewBalance: member.PointsBalance}, nil
	}

	task, err := e.tasks.GetByID(completion.TaskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %d", ErrNotFound, completion.TaskID)
	}

	transactions, newBalance, err := e.applyApproved(*completion, task.Title, StatusPending)
	if err != nil {
		return nil, err
	}

	completion, err = e.completions.GetByID(completionID)
	if err != nil {
		return nil, fmt.Errorf("reload completion: %w", err)
	}

	e.logger.Info("completion approved",
		"completion_id", completionID, "member_id", member.ID, "verified_by", actor.ID)
	e.notifyChanged(member.ID)
	return &CompleteResult{
		Completion:   completion,
		Transactions: transactions,
		NewBalance:   newBalance,
	}, nil
}

// Reconcile re-sums a member's ledger and rewrites the cached balance if
// it has drifted. It returns the authoritative balance and whether a
// repair happened.
func (e *Engine) Reconcile(memberID int64) (int, bool, error) {
	lock := e.memberLock(memberID)
	lock.Lock()
	defer lock.Unlock()

	member, err := e.members.GetByID(memberID)
	if err != nil {
		return 0, false, fmt.Errorf("load member: %w", err)
	}
	if member == nil {
		return 0, false, fmt.Errorf("%w: member %d", ErrNotFound, memberID)
	}

	sum, err := e.ledger.SumForMember(memberID)
	if err != nil {
		return 0, false, fmt.Errorf("sum ledger: %w", err)
	}
	if sum < 0 {
		sum = 0
	}

	if sum == member.PointsBalance {
		return sum, false, nil
	}

	e.logger.Warn("balance drift repaired",
		"member_id", memberID, "cached", member.PointsBalance, "ledger", sum)
	if err := e.members.UpdateBalance(memberID, sum); err != nil {
		return 0, false, fmt.Errorf("repair balance: %w", err)
	}
	e.notifyChanged(memberID)
	return sum, true, nil
}
