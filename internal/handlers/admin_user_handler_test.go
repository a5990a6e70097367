package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/herland/laundry-backend/internal/database"
	"github.com/herland/laundry-backend/internal/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func setupAdminUserHandler(db *sqlx.DB) *AdminUserHandler {
	return NewAdminUserHandler(database.NewProfileRepository(db), testLogger())
}

// adminUserRequest is like adminRequest but with a fixed admin user id, so
// the self-delete guard can be tested.
func adminUserRequest(handler gin.HandlerFunc, adminID uuid.UUID, method, path, target string, body interface{}) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: adminID,
			Role:   "Admin",
		})
	})
	router.Handle(method, path, handler)

	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListUsers(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM profiles ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(profileColsForSelect).
			AddRow(profileRow(t, userID, "juan@example.com", "password123", "Customer")...))

	w := adminUserRequest(handler.ListUsers, uuid.New(), http.MethodGet, "/users", "/users", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "juan@example.com")
	// The password hash never leaves the server
	assert.NotContains(t, w.Body.String(), "password_hash")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_ChangesRole(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)
	userID := uuid.New()

	mock.ExpectQuery(`UPDATE profiles SET role = \$2, updated_at = NOW\(\)`).
		WithArgs(userID, "Staff").
		WillReturnRows(sqlmock.NewRows(profileColsForSelect).
			AddRow(userID, "juan@example.com", "+639171234567", "hash",
				"Juan Dela Cruz", "Staff", time.Now(), time.Now()))

	w := adminUserRequest(handler.UpdateUser, uuid.New(), http.MethodPut, "/users/:id",
		"/users/"+userID.String(), gin.H{"role": "Staff"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"Staff"`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_RejectsUnknownRole(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)

	w := adminUserRequest(handler.UpdateUser, uuid.New(), http.MethodPut, "/users/:id",
		"/users/"+uuid.New().String(), gin.H{"role": "Superuser"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid role")
}

func TestDeleteUser(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)
	targetID := uuid.New()

	mock.ExpectExec(`DELETE FROM profiles WHERE id = \$1`).
		WithArgs(targetID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := adminUserRequest(handler.DeleteUser, uuid.New(), http.MethodDelete, "/users/:id",
		"/users/"+targetID.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_SelfDeleteBlocked(t *testing.T) {
	db, _ := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)
	adminID := uuid.New()

	w := adminUserRequest(handler.DeleteUser, adminID, http.MethodDelete, "/users/:id",
		"/users/"+adminID.String(), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot delete your own account")
}

func TestDeleteUser_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()

	handler := setupAdminUserHandler(db)
	targetID := uuid.New()

	mock.ExpectExec(`DELETE FROM profiles WHERE id = \$1`).
		WithArgs(targetID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := adminUserRequest(handler.DeleteUser, uuid.New(), http.MethodDelete, "/users/:id",
		"/users/"+targetID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
