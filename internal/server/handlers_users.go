package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/storage"
)

type updateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	RoleID    string `json:"userTypeId"`
}

// handleListUsers returns all accounts. Password hashes never serialize.
func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// handleListRoles returns the role reference data.
func (s *Server) handleListRoles(c *gin.Context) {
	roles, err := s.store.ListRoles(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list roles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve user types"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"userTypes": roles})
}

// handleUpdateUser partially updates name fields and, subject to policy,
// the role.
func (s *Server) handleUpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	ctx := c.Request.Context()
	target, err := s.store.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		slog.Error("Failed to load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	if req.FirstName != "" {
		target.FirstName = req.FirstName
	}
	if req.LastName != "" {
		target.LastName = req.LastName
	}

	// Role changes go through the policy; assigning the current role is a
	// no-op that skips the check entirely.
	if req.RoleID != "" && req.RoleID != target.RoleID {
		newRole, err := s.store.GetRoleByID(ctx, req.RoleID)
		if err != nil {
			slog.Error("Failed to load role", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
			return
		}
		if newRole == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user type"})
			return
		}

		requester := currentUser(c)
		if err := authz.CheckAssignRole(requester.AccessLevel(), newRole.AccessLevel); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
			return
		}

		target.RoleID = newRole.ID
		target.Role = newRole
	}

	if err := s.store.UpdateUser(ctx, target); err != nil {
		slog.Error("Failed to update user", "user_id", target.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": target})
}

// handleDeleteUser removes an account, subject to the self-delete and
// strict-superiority rules.
func (s *Server) handleDeleteUser(c *gin.Context) {
	ctx := c.Request.Context()

	target, err := s.store.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		slog.Error("Failed to load user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	requester := currentUser(c)
	if err := authz.CheckDeleteUser(requester, target); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, authz.ErrSelfDelete) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	if err := s.store.DeleteUser(ctx, target.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.Error("Failed to delete user", "user_id", target.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
