// Package directory owns the canonical employee collection and keeps it in
// step with the remote record store.
package directory

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"employee-directory/internal/metrics"
	"employee-directory/internal/models"
	"employee-directory/internal/validation"
)

// User-facing messages.
const (
	MsgFetchFailed  = "Failed to fetch data. Please check the network connection."
	MsgCreated      = "Employee added successfully!"
	MsgCreateFailed = "Failed to add employee. Please try again."
	MsgUpdated      = "Employee updated successfully!"
	MsgUpdateFailed = "Failed to update employee. Please try again."
	MsgDeleted      = "Employee deleted successfully!"
	MsgDeleteFailed = "Failed to delete employee. Please try again."
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3 * time.Second

var (
	// ErrClosed is returned once Close has been called; results of requests
	// still in flight at that point are discarded.
	ErrClosed = errors.New("directory: controller closed")
	// ErrNotPersisted is returned for edit and delete intents on a draft.
	ErrNotPersisted = errors.New("directory: employee has no id")
	// ErrNoPendingDelete is returned by ConfirmDelete with nothing staged.
	ErrNoPendingDelete = errors.New("directory: no pending delete")
	// ErrDeleteInProgress is returned by ConfirmDelete while the staged
	// target is already being deleted.
	ErrDeleteInProgress = errors.New("directory: delete already in progress")
)

// RecordStore is the remote store as seen by the controller.
type RecordStore interface {
	List(ctx context.Context) ([]models.Employee, error)
	Create(ctx context.Context, draft models.Employee) (models.Employee, error)
	Update(ctx context.Context, id string, e models.Employee) (models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// Controller turns user intents into record store calls and state changes.
type Controller struct {
	records RecordStore
	state   *Store
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	ttl     time.Duration

	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	closed   bool
	deleting map[string]struct{}
}

// Option configures the controller.
type Option func(*Controller)

// WithLogger sets the logger for swallowed causes.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records notification and validation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithClock overrides the reference time for age checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithNotificationTTL overrides DefaultNotificationTTL.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewController constructs a controller in the idle state.
func NewController(records RecordStore, opts ...Option) (*Controller, error) {
	if records == nil {
		return nil, errors.New("directory: nil record store")
	}
	c := &Controller{
		records: records,
		state:   NewStore(),
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
		ttl:     DefaultNotificationTTL,

		deleting: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return c.state.State()
}

// Subscribe registers fn for every state change.
func (c *Controller) Subscribe(fn func(State)) func() {
	return c.state.Subscribe(fn)
}

// Close cancels the pending notification clear and stops applying results
// of outstanding requests.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// dispatch drops actions after Close.
func (c *Controller) dispatch(a Action) {
	if c.isClosed() {
		return
	}
	c.state.Dispatch(a)
}

// Refresh replaces the collection with the store's full list. It does not
// retry.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.dispatch(fetchStarted{})
	employees, err := c.records.List(ctx)
	if c.isClosed() {
		return ErrClosed
	}
	if err != nil {
		// the error banner is the only signal; no transient notification
		c.logger.Printf("directory: fetch employees: %v", err)
		c.dispatch(fetchFailed{message: MsgFetchFailed})
		return err
	}
	c.dispatch(fetchSucceeded{employees: employees})
	return nil
}

// SubmitCreate validates draft and, when acceptable, creates it and
// refreshes the collection. A non-empty Result means nothing was sent.
func (c *Controller) SubmitCreate(ctx context.Context, draft models.Employee) (validation.Result, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	draft.ID = ""
	if res := c.validate(draft, ""); !res.Valid() {
		c.dispatch(formRejected{mode: FormCreate, draft: draft, errors: res})
		return res, nil
	}
	c.dispatch(formOpened{mode: FormCreate, draft: draft})

	if _, err := c.records.Create(ctx, draft); err != nil {
		if c.isClosed() {
			return nil, ErrClosed
		}
		c.logger.Printf("directory: create employee: %v", err)
		c.notify(NotificationError, MsgCreateFailed)
		return nil, err
	}
	if c.isClosed() {
		return nil, ErrClosed
	}
	c.notify(NotificationSuccess, MsgCreated)
	c.dispatch(formClosed{mode: FormCreate})
	// the create stands even if the reload fails; Refresh reports that
	// through the error banner
	_ = c.Refresh(ctx)
	return nil, nil
}

// SubmitUpdate validates record against the rest of the collection and,
// when acceptable, updates it and refreshes the collection.
func (c *Controller) SubmitUpdate(ctx context.Context, record models.Employee) (validation.Result, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if !record.Persisted() {
		return nil, ErrNotPersisted
	}
	if res := c.validate(record, record.ID); !res.Valid() {
		c.dispatch(formRejected{mode: FormEdit, draft: record, errors: res})
		return res, nil
	}
	c.dispatch(formOpened{mode: FormEdit, draft: record})

	if _, err := c.records.Update(ctx, record.ID, record); err != nil {
		if c.isClosed() {
			return nil, ErrClosed
		}
		c.logger.Printf("directory: update employee %s: %v", record.ID, err)
		c.notify(NotificationError, MsgUpdateFailed)
		return nil, err
	}
	if c.isClosed() {
		return nil, ErrClosed
	}
	c.notify(NotificationSuccess, MsgUpdated)
	c.dispatch(formClosed{mode: FormEdit, id: record.ID})
	// see SubmitCreate
	_ = c.Refresh(ctx)
	return nil, nil
}

func (c *Controller) validate(draft models.Employee, editingID string) validation.Result {
	res := validation.Validate(draft, c.state.State().Collection, editingID, c.now())
	for field, fe := range res {
		c.metrics.IncValidationFailure(field, string(fe.Code))
	}
	return res
}

// RequestDelete stages e for deletion without contacting the store. A new
// request replaces any earlier one.
func (c *Controller) RequestDelete(e models.Employee) error {
	if !e.Persisted() {
		return ErrNotPersisted
	}
	c.dispatch(deleteRequested{employee: e})
	return nil
}

// CancelDelete drops the staged target.
func (c *Controller) CancelDelete() {
	c.dispatch(deleteCleared{})
}

// ConfirmDelete deletes the staged target. On success the record is removed
// locally without a refresh. The prompt is cleared whatever the outcome.
// Only one delete per record is sent at a time.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	pending := c.state.State().PendingDelete
	if pending == nil {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	id := pending.ID
	if _, busy := c.deleting[id]; busy {
		c.mu.Unlock()
		return ErrDeleteInProgress
	}
	c.deleting[id] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.deleting, id)
		c.mu.Unlock()
	}()

	err := c.records.Delete(ctx, id)
	if c.isClosed() {
		return ErrClosed
	}
	if err != nil {
		c.logger.Printf("directory: delete employee %s: %v", id, err)
		c.notify(NotificationError, MsgDeleteFailed)
		c.dispatch(deleteCleared{id: id})
		return err
	}
	c.dispatch(employeeRemoved{id: id})
	c.notify(NotificationSuccess, MsgDeleted)
	c.dispatch(deleteCleared{id: id})
	return nil
}

// SetFilter replaces both search inputs.
func (c *Controller) SetFilter(f models.Filter) {
	c.dispatch(filterChanged{filter: f})
}

// SetNameFilter changes the name query.
func (c *Controller) SetNameFilter(name string) {
	f := c.state.State().Filter
	f.Name = name
	c.SetFilter(f)
}

// SetDepartmentFilter changes the department query.
func (c *Controller) SetDepartmentFilter(department string) {
	f := c.state.State().Filter
	f.Department = department
	c.SetFilter(f)
}

// ClearFilters resets both search inputs.
func (c *Controller) ClearFilters() {
	c.SetFilter(models.Filter{})
}

// OpenCreateForm shows an empty create form, closing any edit form.
func (c *Controller) OpenCreateForm() {
	c.dispatch(formOpened{mode: FormCreate})
}

// ToggleCreateForm opens the create form, or closes it when already open.
func (c *Controller) ToggleCreateForm() {
	if c.state.State().Form.Mode == FormCreate {
		c.CloseForm()
		return
	}
	c.OpenCreateForm()
}

// OpenEditForm shows the edit form prefilled with e.
func (c *Controller) OpenEditForm(e models.Employee) error {
	if !e.Persisted() {
		return ErrNotPersisted
	}
	c.dispatch(formOpened{mode: FormEdit, draft: e})
	return nil
}

// CloseForm hides whichever form is open and discards its input.
func (c *Controller) CloseForm() {
	c.dispatch(formClosed{})
}

// Find returns the record with id from the canonical collection.
func (c *Controller) Find(id string) (models.Employee, bool) {
	for _, e := range c.state.State().Collection {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

// DismissNotification clears the visible notification early.
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.dispatch(notificationCleared{seq: seq})
}

// notify shows a notification and schedules its clear, cancelling the
// clear of the one it replaces.
func (c *Controller) notify(kind NotificationKind, text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.metrics.IncNotification(string(kind))
	c.dispatch(notificationShown{n: Notification{Kind: kind, Text: text, Seq: seq}})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.seq != seq {
		return
	}
	c.timer = time.AfterFunc(c.ttl, func() {
		c.dispatch(notificationCleared{seq: seq})
	})
}
