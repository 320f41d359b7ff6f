package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Registration failed.")
		return
	}
	c.JSON(http.StatusCreated, userToResponse(*user))
}

func (h *Handler) login(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Login failed.")
		return
	}

	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err, "Login failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"userId":    user.ID,
		"expiresAt": expires.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) getAllUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), principalID(c))
	if err != nil {
		respondError(c, err, "Retrieving users failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": usersToResponse(users)})
}

func (h *Handler) getCurrentUser(c *gin.Context) {
	user, err := h.users.Current(c.Request.Context(), principalID(c))
	if err != nil {
		respondError(c, err, "Retrieving user failed.")
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving user failed.")
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}

	user, err := h.users.Update(c.Request.Context(), principalID(c), id, in)
	if err != nil {
		respondError(c, err, "Updating user failed.")
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) getUserToConfirm(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}

	id, err := h.users.Confirm(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "Retrieving user failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) getManagedUsers(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	users, err := h.users.Managed(c.Request.Context(), principalID(c), id)
	if err != nil {
		respondError(c, err, "Retrieving managed users failed.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": usersToResponse(users)})
}
