package handler

import (
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		IsActive: req.IsActive.ptr(),
		APIToken: req.APIToken,
		Roles:    req.Roles,
	}
}

func toUpdateInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		IsActive: req.IsActive.ptr(),
		Roles:    req.Roles,
	}
}

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		APIToken:  u.APIToken,
		IsActive:  u.IsActive,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserListResponse(items []ports.UserListItem) userListResponse {
	out := make([]userListItem, 0, len(items))
	for _, it := range items {
		out = append(out, userListItem{
			ID:           it.ID,
			Username:     it.Username,
			Email:        it.Email,
			Phone:        it.Phone,
			APIToken:     it.APIToken,
			IsActive:     it.IsActive,
			Roles:        it.Roles,
			RolesDisplay: it.RolesDisplay,
			Actions: userActions{
				View:        it.Actions.View,
				Edit:        it.Actions.Edit,
				Delete:      it.Actions.Delete,
				RotateToken: it.Actions.RotateToken,
			},
		})
	}
	return userListResponse{Data: out}
}
