package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"time-ledger/internal/database"
	"time-ledger/internal/identity"
	"time-ledger/internal/models"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register создаёт сотрудника. Администраторы появляются только через
// SeedAdmin или ledgerctl.
func (h *Handler) Register(c *gin.Context) {
	var form credentials
	if !bind(c, &form) {
		return
	}

	form.Username = strings.TrimSpace(form.Username)
	if len(form.Username) < 3 || len(form.Password) < 6 {
		badRequest(c, "username must be at least 3 and password at least 6 characters")
		return
	}

	user, err := database.CreateUser(h.DB.WithContext(c.Request.Context()), form.Username, form.Password, models.RoleEmployee)
	if errors.Is(err, database.ErrUserExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Log.WithContext(c.Request.Context()).Info("user registered", "user_id", user.ID, "username", user.Username)
	c.JSON(http.StatusCreated, user)
}

// Login открывает сессию и заодно выдаёт Bearer-токен для API-клиентов.
func (h *Handler) Login(c *gin.Context) {
	var form credentials
	if !bind(c, &form) {
		return
	}

	user, ok := database.Authenticate(h.DB.WithContext(c.Request.Context()), form.Username, form.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	sess := sessions.Default(c)
	sess.Set("user_id", user.ID)
	sess.Set("role", string(user.Role))
	if err := sess.Save(); err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.Issuer.Sign(identity.FromUser(*user))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	_ = sess.Save()
	c.Status(http.StatusNoContent)
}
