package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"employee-directory/internal/models"
	"employee-directory/internal/repository"

	"github.com/gin-gonic/gin"
)

// RecordHandler serves the employee resource of the record store.
type RecordHandler struct {
	Repo   repository.EmployeeRepository
	Logger *log.Logger
}

func NewRecordHandler(repo repository.EmployeeRepository, logger *log.Logger) *RecordHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &RecordHandler{Repo: repo, Logger: logger}
}

// recordDTO uses the store's external field names.
type recordDTO struct {
	ID          string `json:"ID,omitempty"`
	FirstName   string `json:"FIRST_NAME" binding:"required"`
	LastName    string `json:"LAST_NAME" binding:"required"`
	Department  string `json:"DEPARTMENT" binding:"required"`
	DateOfBirth string `json:"DATE_OF_BIRTH" binding:"required"` // "YYYY-MM-DD" or RFC 3339
}

func toDTO(e models.Employee) recordDTO {
	return recordDTO{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Department:  e.Department,
		DateOfBirth: e.Birthdate + "T00:00:00.000Z",
	}
}

// bindRecord decodes and normalizes the request body.
func bindRecord(c *gin.Context) (models.Employee, bool) {
	var in recordDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return models.Employee{}, false
	}

	e := models.Employee{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Department: strings.TrimSpace(in.Department),
	}
	if e.FirstName == "" || e.LastName == "" || e.Department == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "FIRST_NAME, LAST_NAME and DEPARTMENT are required"})
		return models.Employee{}, false
	}

	dob := models.DatePart(strings.TrimSpace(in.DateOfBirth))
	if _, err := time.Parse(models.DateLayout, dob); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "DATE_OF_BIRTH must be YYYY-MM-DD"})
		return models.Employee{}, false
	}
	e.Birthdate = dob
	return e, true
}

// GET /employee
func (h *RecordHandler) ListRecords(c *gin.Context) {
	list, err := h.Repo.List(c.Request.Context())
	if err != nil {
		h.Logger.Printf("list employees: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list employees"})
		return
	}
	out := make([]recordDTO, 0, len(list))
	for _, e := range list {
		out = append(out, toDTO(e))
	}
	c.JSON(http.StatusOK, out)
}

// GET /employee/:id
func (h *RecordHandler) GetRecord(c *gin.Context) {
	e, err := h.Repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeRepoError(c, "get employee", err)
		return
	}
	c.JSON(http.StatusOK, toDTO(e))
}

// POST /employee
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	e, ok := bindRecord(c)
	if !ok {
		return
	}
	created, err := h.Repo.Create(c.Request.Context(), e)
	if err != nil {
		h.Logger.Printf("insert employee: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "insert employee failed"})
		return
	}
	c.JSON(http.StatusCreated, toDTO(created))
}

// PUT /employee/:id
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	e, ok := bindRecord(c)
	if !ok {
		return
	}
	updated, err := h.Repo.Update(c.Request.Context(), c.Param("id"), e)
	if err != nil {
		h.writeRepoError(c, "update employee", err)
		return
	}
	c.JSON(http.StatusOK, toDTO(updated))
}

// DELETE /employee/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	if err := h.Repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeRepoError(c, "delete employee", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "employee deleted"})
}

func (h *RecordHandler) writeRepoError(c *gin.Context, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee not found"})
		return
	}
	h.Logger.Printf("%s %s: %v", op, c.Param("id"), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}
