// Package actions wraps each plugin API call: it calls the client, turns the
// not_connected sentinel into a disconnect, dispatches the result into the store
// and hands (data, error) back to the caller. Nothing here panics.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kastheco/glrhs/config"
	"github.com/kastheco/glrhs/internal/pluginapi"
	"github.com/kastheco/glrhs/log"
	"github.com/kastheco/glrhs/model"
	"github.com/kastheco/glrhs/state"
	"github.com/kastheco/glrhs/state/selectors"
)

// ErrNotConnected is returned, wrapped together with the API error, when the
// server reports that the user has no linked GitLab account.
var ErrNotConnected = errors.New("gitlab account not connected")

// API is the subset of the plugin client the actions use.
type API interface {
	GetConnected(ctx context.Context, reminder bool) (*model.ConnectedData, error)
	GetLHSData(ctx context.Context) (*model.LHSData, error)
	GetPrsDetails(ctx context.Context, prs []model.PRDetailsRequest) ([]model.PRDetails, error)
	GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error)
	GetGitlabUser(ctx context.Context, userID string) (string, error)
	CreateIssue(ctx context.Context, req model.IssueRequest) (*model.Issue, error)
	AttachCommentToIssue(ctx context.Context, req model.CommentRequest) (*model.Note, error)
	SearchIssues(ctx context.Context, term string) ([]model.Issue, error)
}

var _ API = (*pluginapi.Client)(nil)

// Actions is shared by the plugin, the popout syncer and the views.
type Actions struct {
	api      API
	store    state.ReadDispatcher
	cooldown time.Duration
	now      func() time.Time
	epochs   *epochs
}

// Option configures Actions.
type Option func(*Actions)

// WithClock replaces time.Now. Tests use it to move across the user cache cooldown.
func WithClock(now func() time.Time) Option {
	return func(a *Actions) { a.now = now }
}

// WithUserCacheCooldown sets how long a failed user lookup is remembered.
func WithUserCacheCooldown(d time.Duration) Option {
	return func(a *Actions) {
		if d > 0 {
			a.cooldown = d
		}
	}
}

// New creates Actions dispatching into store.
func New(api API, store state.ReadDispatcher, opts ...Option) *Actions {
	a := &Actions{
		api:      api,
		store:    store,
		cooldown: config.DefaultUserCacheCooldown,
		now:      time.Now,
		epochs:   newEpochs(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// checkAndHandleNotConnected dispatches a disconnect when err is the
// not_connected sentinel and reports whether the caller may go on treating the
// response as a normal result or failure.
func (a *Actions) checkAndHandleNotConnected(err error) bool {
	if !pluginapi.IsNotConnected(err) {
		return true
	}
	a.store.Dispatch(state.Disconnected())
	return false
}

// fail is the common error exit of every action.
func (a *Actions) fail(op string, err error) error {
	if !a.checkAndHandleNotConnected(err) {
		log.InfoLog.Printf("%s: user not connected", op)
		return fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	if !errors.Is(err, context.Canceled) {
		log.WarningLog.Printf("%s failed: %v", op, err)
	}
	return err
}

// GetConnected refreshes the connection status. reminder asks the server to
// send the daily reminder if one is due.
func (a *Actions) GetConnected(ctx context.Context, reminder bool) (*model.ConnectedData, error) {
	data, err := a.api.GetConnected(ctx, reminder)
	if err != nil {
		return nil, a.fail("get connected", err)
	}
	a.store.Dispatch(state.ReceivedConnected{Data: *data})
	return data, nil
}

// GetLHSData fetches the sidebar lists. When a newer fetch was issued while this
// one was in flight the result is returned but not stored.
func (a *Actions) GetLHSData(ctx context.Context) (*model.LHSData, error) {
	const key = "lhs"
	epoch := a.epochs.issue(key)

	data, err := a.api.GetLHSData(ctx)
	if err != nil {
		return nil, a.fail("get lhs data", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !a.epochs.latest(key, epoch) {
		log.InfoLog.Printf("dropping stale lhs data (epoch %d)", epoch)
		return data, nil
	}
	a.store.Dispatch(state.ReceivedLHSData{Data: data})
	return data, nil
}

// GetReviewDetails fetches detail records for the merge requests awaiting the
// user's review.
func (a *Actions) GetReviewDetails(ctx context.Context, prs []model.MergeRequest) ([]model.PRDetails, error) {
	details, err := a.prDetails(ctx, prs)
	if err != nil {
		return nil, a.fail("get review details", err)
	}
	a.store.Dispatch(state.ReceivedReviewDetails{Data: details})
	return details, nil
}

// GetYourPrDetails fetches detail records for the user's own merge requests.
func (a *Actions) GetYourPrDetails(ctx context.Context, prs []model.MergeRequest) ([]model.PRDetails, error) {
	details, err := a.prDetails(ctx, prs)
	if err != nil {
		return nil, a.fail("get your pr details", err)
	}
	a.store.Dispatch(state.ReceivedYourPrDetails{Data: details})
	return details, nil
}

func (a *Actions) prDetails(ctx context.Context, prs []model.MergeRequest) ([]model.PRDetails, error) {
	if len(prs) == 0 {
		return nil, nil
	}
	return a.api.GetPrsDetails(ctx, model.DetailsRequest(prs))
}

// GetChannelSubscriptions fetches and stores the subscription list of one channel.
func (a *Actions) GetChannelSubscriptions(ctx context.Context, channelID string) ([]model.Subscription, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel id required")
	}
	key := "subscriptions:" + channelID
	epoch := a.epochs.issue(key)

	subs, err := a.api.GetChannelSubscriptions(ctx, channelID)
	if err != nil {
		return nil, a.fail("get channel subscriptions", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !a.epochs.latest(key, epoch) {
		log.InfoLog.Printf("dropping stale subscriptions for %s (epoch %d)", channelID, epoch)
		return subs, nil
	}
	a.store.Dispatch(state.ReceivedChannelSubscriptions{ChannelID: channelID, Subscriptions: subs})
	return subs, nil
}

// GetGitlabUser resolves userID, answering from the cache when the entry is
// fresh. A 404 is remembered as a failed lookup so the user is not asked for
// again until the cooldown passes.
func (a *Actions) GetGitlabUser(ctx context.Context, userID string) (model.GitlabUser, error) {
	if userID == "" {
		return model.GitlabUser{}, fmt.Errorf("user id required")
	}
	if entry, fresh := selectors.CachedGitlabUser(a.store.State(), userID, a.now(), a.cooldown); fresh {
		return entry, nil
	}

	username, err := a.api.GetGitlabUser(ctx, userID)
	if err != nil {
		if pluginapi.IsNotFound(err) {
			entry := model.GitlabUser{LastTry: a.now()}
			a.store.Dispatch(state.ReceivedGitlabUser{UserID: userID, Data: entry})
			return entry, err
		}
		return model.GitlabUser{}, a.fail("get gitlab user", err)
	}

	entry := model.GitlabUser{Username: username}
	a.store.Dispatch(state.ReceivedGitlabUser{UserID: userID, Data: entry})
	return entry, nil
}

// CreateIssue creates an issue and closes the create-issue modal.
func (a *Actions) CreateIssue(ctx context.Context, req model.IssueRequest) (*model.Issue, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("issue title required")
	}
	issue, err := a.api.CreateIssue(ctx, req)
	if err != nil {
		return nil, a.fail("create issue", err)
	}
	a.store.Dispatch(state.CloseCreateIssueModal{})
	return issue, nil
}

// AttachCommentToIssue attaches a post to an issue and closes the modal.
func (a *Actions) AttachCommentToIssue(ctx context.Context, req model.CommentRequest) (*model.Note, error) {
	note, err := a.api.AttachCommentToIssue(ctx, req)
	if err != nil {
		return nil, a.fail("attach comment", err)
	}
	a.store.Dispatch(state.CloseAttachCommentModal{})
	return note, nil
}

// SearchIssues searches issues. The result is not stored.
func (a *Actions) SearchIssues(ctx context.Context, term string) ([]model.Issue, error) {
	issues, err := a.api.SearchIssues(ctx, term)
	if err != nil {
		return nil, a.fail("search issues", err)
	}
	return issues, nil
}

// RefreshSidebar fetches the sidebar lists and then the detail records for both
// merge request lists.
func (a *Actions) RefreshSidebar(ctx context.Context) error {
	data, err := a.GetLHSData(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var reviewErr, yourErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, reviewErr = a.GetReviewDetails(ctx, data.Reviews)
	}()
	go func() {
		defer wg.Done()
		_, yourErr = a.GetYourPrDetails(ctx, data.YourAssignedPrs)
	}()
	wg.Wait()
	return errors.Join(reviewErr, yourErr)
}

// epochs stamps requests per key so that only the last issued request for a
// key may write its result.
type epochs struct {
	mu  sync.Mutex
	seq map[string]uint64
}

func newEpochs() *epochs {
	return &epochs{seq: make(map[string]uint64)}
}

func (e *epochs) issue(key string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq[key]++
	return e.seq[key]
}

func (e *epochs) latest(key string, n uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq[key] == n
}
