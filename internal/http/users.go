package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/audit"
	"github.com/referenciales/referenciales/internal/auth"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/database/users"
	"github.com/referenciales/referenciales/internal/entities"
)

type UsersController struct {
	db          *database.Database
	authService *auth.Service
	auditor     *audit.Service
}

func NewUsersController(db *database.Database, authService *auth.Service, auditor *audit.Service) *UsersController {
	return &UsersController{
		db:          db,
		authService: authService,
		auditor:     auditor,
	}
}

func (uc *UsersController) RegisterRoutes(router *gin.Engine, adminOnly gin.HandlerFunc) {
	group := router.Group("/api/users", adminOnly)
	group.GET("", uc.List)
	group.POST("", uc.Create)
	group.DELETE("/:id", uc.Delete)
}

type userView struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      entities.UserRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
	LastLogin *time.Time        `json:"last_login,omitempty"`
}

func toUserView(u entities.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLoginAt,
	}
}

func (uc *UsersController) List(c *gin.Context) {
	all, err := users.NewRepository(uc.db.DB).GetAll()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}

	views := make([]userView, 0, len(all))
	for _, u := range all {
		views = append(views, toUserView(u))
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (uc *UsersController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "username, email, password and role are required")
		return
	}

	user, err := uc.authService.CreateUser(req.Username, req.Email, req.Password, entities.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "username already taken"})
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toUserView(*user))
}

// Delete removes a user account. A user who has contributed
// referenciales cannot be deleted; the records reference them and the
// public dataset must keep its provenance.
func (uc *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if id == GetUserID(c) {
		respondBadRequest(c, "cannot delete your own account")
		return
	}

	repo := users.NewRepository(uc.db.DB)
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}

	count, err := referenciales.NewRepository(uc.db.DB).CountByUser(id)
	if err != nil {
		respondInternalError(c, err, "count user referenciales")
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   fmt.Sprintf("el usuario tiene %d referenciales asociados y no puede ser eliminado", count),
			Code:    "USER_HAS_REFERENCIALES",
			Details: gin.H{"referenciales": count},
		})
		return
	}

	if err := repo.Delete(id); err != nil {
		respondInternalError(c, err, "delete user")
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogDelete(GetUserID(c), "user", id, user.Username, nil)
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "user deleted"})
}
