package directory

import (
	"employee-directory/internal/models"
	"employee-directory/internal/validation"
	"employee-directory/internal/view"
)

// Status is the fetch lifecycle of the collection.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// NotificationKind distinguishes success and error toasts.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the transient user-facing message.
type Notification struct {
	Kind NotificationKind `json:"kind"`
	Text string           `json:"text"`
	Seq  uint64           `json:"seq"`
}

// FormMode says which form, if any, is open.
type FormMode string

const (
	FormNone   FormMode = ""
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// Form is the in-progress input of the create or edit form.
type Form struct {
	Mode   FormMode          `json:"mode"`
	Draft  models.Employee   `json:"draft"`
	Errors validation.Result `json:"errors,omitempty"`
}

// Open reports whether a form is shown.
func (f Form) Open() bool {
	return f.Mode != FormNone
}

// State is an immutable snapshot of the directory. View is derived from
// Collection and Filter on every reduction and is never set directly.
type State struct {
	Status        Status            `json:"status"`
	Error         string            `json:"error,omitempty"`
	Collection    []models.Employee `json:"collection"`
	Filter        models.Filter     `json:"filter"`
	View          view.View         `json:"view"`
	Notification  *Notification     `json:"notification,omitempty"`
	Form          Form              `json:"form"`
	PendingDelete *models.Employee  `json:"pending_delete,omitempty"`

	notificationSeq uint64
}

// Action is a state transition handled by Reduce.
type Action interface {
	action()
}

type fetchStarted struct{}

type fetchSucceeded struct{ employees []models.Employee }

type fetchFailed struct{ message string }

type filterChanged struct{ filter models.Filter }

type employeeRemoved struct{ id string }

type notificationShown struct{ n Notification }

type notificationCleared struct{ seq uint64 }

type formOpened struct {
	mode  FormMode
	draft models.Employee
}

// formClosed closes the form only when it still shows the given mode and
// record; an empty mode closes unconditionally.
type formClosed struct {
	mode FormMode
	id   string
}

type formRejected struct {
	mode   FormMode
	draft  models.Employee
	errors validation.Result
}

type deleteRequested struct{ employee models.Employee }

// deleteCleared clears the pending target when it still matches id; an
// empty id clears unconditionally.
type deleteCleared struct{ id string }

func (fetchStarted) action()        {}
func (fetchSucceeded) action()      {}
func (fetchFailed) action()         {}
func (filterChanged) action()       {}
func (employeeRemoved) action()     {}
func (notificationShown) action()   {}
func (notificationCleared) action() {}
func (formOpened) action()          {}
func (formClosed) action()          {}
func (formRejected) action()        {}
func (deleteRequested) action()     {}
func (deleteCleared) action()       {}

// Reduce returns the state that follows s after a. It never mutates s.
func Reduce(s State, a Action) State {
	next, _ := reduce(s, a)
	return next
}

// reduce also reports whether a changed anything.
func reduce(s State, a Action) (State, bool) {
	next := s
	switch a := a.(type) {
	case fetchStarted:
		next.Status = StatusLoading
		next.Error = ""
	case fetchSucceeded:
		next.Status = StatusReady
		next.Error = ""
		next.Collection = append(make([]models.Employee, 0, len(a.employees)), a.employees...)
	case fetchFailed:
		next.Status = StatusError
		next.Error = a.message
	case filterChanged:
		next.Filter = a.filter
	case employeeRemoved:
		kept := make([]models.Employee, 0, len(s.Collection))
		for _, e := range s.Collection {
			if e.ID != a.id {
				kept = append(kept, e)
			}
		}
		next.Collection = kept
	case notificationShown:
		if a.n.Seq <= s.notificationSeq {
			return s, false
		}
		n := a.n
		next.Notification = &n
		next.notificationSeq = n.Seq
	case notificationCleared:
		if s.Notification == nil || s.Notification.Seq != a.seq {
			return s, false
		}
		next.Notification = nil
	case formOpened:
		next.Form = Form{Mode: a.mode, Draft: a.draft}
	case formClosed:
		if a.mode != FormNone && (s.Form.Mode != a.mode || s.Form.Draft.ID != a.id) {
			return s, false
		}
		next.Form = Form{}
	case formRejected:
		next.Form = Form{Mode: a.mode, Draft: a.draft, Errors: a.errors}
	case deleteRequested:
		e := a.employee
		next.PendingDelete = &e
	case deleteCleared:
		if a.id != "" && (s.PendingDelete == nil || s.PendingDelete.ID != a.id) {
			return s, false
		}
		next.PendingDelete = nil
	default:
		return s, false
	}
	next.View = view.Derive(next.Collection, next.Filter)
	return next, true
}
