package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spikeside/team-manager/internal/middleware"
	"github.com/spikeside/team-manager/internal/repository"
	"github.com/spikeside/team-manager/internal/storage"
	"github.com/spikeside/team-manager/internal/validation"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// avatarContentTypes maps accepted upload extensions to content types.
var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	Users   *repository.UserRepo
	Avatars storage.ObjectStorage
}

func NewProfileHandler(u *repository.UserRepo, a storage.ObjectStorage) *ProfileHandler {
	return &ProfileHandler{Users: u, Avatars: a}
}

type updateProfileReq struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Me returns the authenticated user's profile.
func (h *ProfileHandler) Me(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": newUserPart(u)})
}

// Update edits the profile. Uniqueness of email and username is checked
// against the values the record held before this request, so keeping
// either field unchanged can never collide with the user's own row,
// while a changed value must be free among all other users.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	input := validation.Profile{
		Email:     validation.NormalizeEmail(req.Email),
		Username:  validation.NormalizeUsername(req.Username),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
	}
	if errs := validation.ValidateProfile(input); errs != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Original values captured before any mutation.
	current, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if input.Email != current.Email {
		if taken, err := h.Users.EmailTaken(ctx, input.Email, userID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		} else if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
	}
	if input.Username != current.Username {
		if taken, err := h.Users.UsernameTaken(ctx, input.Username, userID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		} else if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
	}

	current.Email = input.Email
	current.Username = input.Username
	current.FirstName = input.FirstName
	current.LastName = input.LastName
	current.Phone = input.Phone

	if err := h.Users.UpdateProfile(ctx, &current); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"user": newUserPart(current)})
}

// UpdateAvatar stores an uploaded profile image in the object store
// under a random key and records the key on the user. The image is
// stored as received; resizing is left to whatever serves it.
func (h *ProfileHandler) UpdateAvatar(c echo.Context) error {
	userID, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file required"})
	}
	if fh.Size > maxAvatarBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "avatar too large"})
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only jpg and png images are allowed"})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	key := uuid.NewString() + ext
	if err := h.Avatars.Put(ctx, key, src, fh.Size, contentType); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store avatar failed"})
	}
	if err := h.Users.SetProfileImage(ctx, userID, key); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update profile failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"profile_image": key})
}
