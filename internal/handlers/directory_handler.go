package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"employee-directory/internal/directory"
	"employee-directory/internal/models"
	"employee-directory/internal/recordstore"
	"employee-directory/internal/validation"

	"github.com/gin-gonic/gin"
)

// Directory is the controller surface driven over HTTP.
type Directory interface {
	State() directory.State
	Subscribe(fn func(directory.State)) func()
	Refresh(ctx context.Context) error
	SubmitCreate(ctx context.Context, draft models.Employee) (validation.Result, error)
	SubmitUpdate(ctx context.Context, record models.Employee) (validation.Result, error)
	RequestDelete(e models.Employee) error
	ConfirmDelete(ctx context.Context) error
	CancelDelete()
	SetNameFilter(name string)
	SetDepartmentFilter(department string)
	ClearFilters()
	OpenCreateForm()
	ToggleCreateForm()
	OpenEditForm(e models.Employee) error
	CloseForm()
	Find(id string) (models.Employee, bool)
}

// DirectoryHandler exposes the directory intents and snapshots.
type DirectoryHandler struct {
	Dir    Directory
	Logger *log.Logger

	streamsDone chan struct{}
	closeOnce   sync.Once
}

func NewDirectoryHandler(dir Directory, logger *log.Logger) *DirectoryHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &DirectoryHandler{Dir: dir, Logger: logger, streamsDone: make(chan struct{})}
}

// CloseStreams ends every open event stream; streams opened later end after
// their first snapshot. Register it with http.Server.RegisterOnShutdown.
func (h *DirectoryHandler) CloseStreams() {
	h.closeOnce.Do(func() {
		if h.streamsDone != nil {
			close(h.streamsDone)
		}
	})
}

// GET /api/directory
func (h *DirectoryHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.Dir.State())
}

// GET /api/directory/events
// Streams a snapshot on connect and after every change. A slow reader only
// sees the latest snapshot.
func (h *DirectoryHandler) Events(c *gin.Context) {
	updates := make(chan directory.State, 1)
	unsubscribe := h.Dir.Subscribe(func(s directory.State) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("state", h.Dir.State())
	c.Writer.Flush()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case <-h.streamsDone:
			return false
		case s := <-updates:
			c.SSEvent("state", s)
			return true
		}
	})
}

// POST /api/directory/refresh
func (h *DirectoryHandler) Refresh(c *gin.Context) {
	if err := h.Dir.Refresh(c.Request.Context()); err != nil {
		h.writeError(c, err, directory.MsgFetchFailed)
		return
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

type filterDTO struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
}

// PUT /api/directory/filters
// Omitted fields keep their current value.
func (h *DirectoryHandler) SetFilters(c *gin.Context) {
	var in filterDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if in.Name != nil {
		h.Dir.SetNameFilter(*in.Name)
	}
	if in.Department != nil {
		h.Dir.SetDepartmentFilter(*in.Department)
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

// DELETE /api/directory/filters
func (h *DirectoryHandler) ClearFilters(c *gin.Context) {
	h.Dir.ClearFilters()
	c.JSON(http.StatusOK, h.Dir.State())
}

// POST /api/directory/forms/create?toggle=1
func (h *DirectoryHandler) OpenCreateForm(c *gin.Context) {
	if c.Query("toggle") != "" {
		h.Dir.ToggleCreateForm()
	} else {
		h.Dir.OpenCreateForm()
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

// POST /api/directory/forms/edit/:id
func (h *DirectoryHandler) OpenEditForm(c *gin.Context) {
	e, ok := h.Dir.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	if err := h.Dir.OpenEditForm(e); err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

// DELETE /api/directory/forms
func (h *DirectoryHandler) CloseForm(c *gin.Context) {
	h.Dir.CloseForm()
	c.JSON(http.StatusOK, h.Dir.State())
}

// POST /api/directory/employees
func (h *DirectoryHandler) CreateEmployee(c *gin.Context) {
	var draft models.Employee
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	res, err := h.Dir.SubmitCreate(c.Request.Context(), draft)
	if err != nil {
		h.writeError(c, err, directory.MsgCreateFailed)
		return
	}
	if !res.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": res})
		return
	}
	c.JSON(http.StatusCreated, h.Dir.State())
}

// PUT /api/directory/employees/:id
func (h *DirectoryHandler) UpdateEmployee(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Dir.Find(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	var record models.Employee
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	record.ID = id
	res, err := h.Dir.SubmitUpdate(c.Request.Context(), record)
	if err != nil {
		h.writeError(c, err, directory.MsgUpdateFailed)
		return
	}
	if !res.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": res})
		return
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

// POST /api/directory/employees/:id/delete
func (h *DirectoryHandler) RequestDelete(c *gin.Context) {
	e, ok := h.Dir.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	if err := h.Dir.RequestDelete(e); err != nil {
		h.writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"confirm": "Are you sure you want to delete " + e.FullName() + "?",
		"state":   h.Dir.State(),
	})
}

// POST /api/directory/delete/confirm
func (h *DirectoryHandler) ConfirmDelete(c *gin.Context) {
	if err := h.Dir.ConfirmDelete(c.Request.Context()); err != nil {
		h.writeError(c, err, directory.MsgDeleteFailed)
		return
	}
	c.JSON(http.StatusOK, h.Dir.State())
}

// POST /api/directory/delete/cancel
func (h *DirectoryHandler) CancelDelete(c *gin.Context) {
	h.Dir.CancelDelete()
	c.JSON(http.StatusOK, h.Dir.State())
}

// writeError maps controller errors to statuses. Remote failures are logged
// by the controller and answered with the user-facing message.
func (h *DirectoryHandler) writeError(c *gin.Context, err error, remoteMsg string) {
	switch {
	case errors.Is(err, directory.ErrNotPersisted):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, directory.ErrNoPendingDelete), errors.Is(err, directory.ErrDeleteInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, directory.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case recordstore.IsRemoteFailure(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": remoteMsg})
	default:
		h.Logger.Printf("directory request %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
