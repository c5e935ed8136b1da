// Package handler provides the HTTP handler for the registration feature.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"expo_backend/internal/feature/registration/domain/entity"
	"expo_backend/internal/feature/registration/transport/http/dto"
	"expo_backend/internal/feature/registration/usecase"
)

// RegisterUsecase defines the workflow operations the handler needs.
// Following Go convention, the interface is defined by the consumer (handler)
// rather than the provider (usecase).
type RegisterUsecase interface {
	// Register creates the user and company atomically and returns the aggregate.
	Register(ctx context.Context, account usecase.AccountInput, company usecase.CompanyInput, brochure *usecase.BrochureFile) (*entity.User, error)
	// EmailTaken reports whether the email is already registered.
	EmailTaken(ctx context.Context, email string) (bool, error)
	// UsernameTaken reports whether the username is already registered.
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// RegisterHandler handles HTTP requests for the registration endpoint.
type RegisterHandler struct {
	register RegisterUsecase
}

// NewRegisterHandler creates a RegisterHandler with the injected workflow.
func NewRegisterHandler(register RegisterUsecase) *RegisterHandler {
	return &RegisterHandler{register: register}
}

// registerResponse is the envelope for every response of the endpoint.
type registerResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  dto.FieldErrors `json:"errors,omitempty"`
}

// Register handles POST /api/register.
// - binds a JSON body or a multipart form (with optional brochure part)
// - normalizes then validates, collecting every field violation
// - 422 with field errors on validation failure or a uniqueness conflict
// - 201 on success, 500 with a generic message on any other failure
func (h *RegisterHandler) Register(c *gin.Context) {
	req, fileHeader, ok := h.bind(c)
	if !ok {
		return
	}

	req.Normalize()
	fieldErrs := req.Validate()
	fieldErrs.Merge(dto.ValidateBrochure(fileHeader))

	ctx := c.Request.Context()

	// Uniqueness pre-checks, only for values that passed their own rules.
	if len(fieldErrs["account_info.email"]) == 0 {
		if taken, err := h.register.EmailTaken(ctx, req.AccountInfo.Email); err == nil && taken {
			fieldErrs.Add("account_info.email", dto.MsgEmailTaken)
		}
	}
	if len(fieldErrs["account_info.username"]) == 0 {
		if taken, err := h.register.UsernameTaken(ctx, req.AccountInfo.Username); err == nil && taken {
			fieldErrs.Add("account_info.username", dto.MsgUsernameTaken)
		}
	}

	if fieldErrs.Any() {
		respondValidation(c, fieldErrs)
		return
	}

	var brochure *usecase.BrochureFile
	if fileHeader != nil {
		f, err := fileHeader.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		defer func() {
			_ = f.Close()
		}()
		brochure = &usecase.BrochureFile{
			Name:   fileHeader.Filename,
			Size:   fileHeader.Size,
			Reader: f,
		}
	}

	user, err := h.register.Register(ctx, accountInput(req.AccountInfo), companyInput(req.CompanyInfo), brochure)
	if err != nil {
		// A duplicate raced in between the pre-check and the commit.
		// Surface it exactly like the validation failure would have.
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			respondValidation(c, dto.FieldErrors{"account_info.email": {dto.MsgEmailTaken}})
		case errors.Is(err, usecase.ErrUsernameTaken):
			respondValidation(c, dto.FieldErrors{"account_info.username": {dto.MsgUsernameTaken}})
		default:
			h.fail(c, err)
		}
		return
	}

	slog.Info("user registration successful",
		"user_id", user.ID,
		"email", user.Email,
		"remote_addr", c.ClientIP(),
	)
	c.JSON(http.StatusCreated, registerResponse{
		Success: true,
		Message: "Registration successful",
	})
}

// bind decodes the request into a RegisterRequest plus the optional brochure
// part. Multipart requests carry account_info and company_info as
// JSON-encoded form fields; everything else is treated as a JSON body.
// Returns ok=false after responding when the payload cannot be decoded.
func (h *RegisterHandler) bind(c *gin.Context) (*dto.RegisterRequest, *multipart.FileHeader, bool) {
	var req dto.RegisterRequest

	if c.ContentType() == "multipart/form-data" {
		if raw := c.PostForm("account_info"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.AccountInfo); err != nil {
				respondBadRequest(c)
				return nil, nil, false
			}
		}
		if raw := c.PostForm("company_info"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.CompanyInfo); err != nil {
				respondBadRequest(c)
				return nil, nil, false
			}
		}
		fileHeader, err := c.FormFile("brochure")
		if err != nil {
			if !errors.Is(err, http.ErrMissingFile) {
				respondBadRequest(c)
				return nil, nil, false
			}
			fileHeader = nil
		}
		return &req, fileHeader, true
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c)
		return nil, nil, false
	}
	return &req, nil, true
}

// fail logs the full error server-side and answers with the generic message;
// no internal detail crosses the boundary.
func (h *RegisterHandler) fail(c *gin.Context, err error) {
	slog.Error("registration failed",
		"error", err,
		"remote_addr", c.ClientIP(),
	)
	c.JSON(http.StatusInternalServerError, registerResponse{
		Success: false,
		Message: "Registration failed. Please try again later.",
	})
}

func respondValidation(c *gin.Context, errs dto.FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, registerResponse{
		Success: false,
		Message: "The given data was invalid.",
		Errors:  errs,
	})
}

func respondBadRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, registerResponse{
		Success: false,
		Message: "Invalid request body.",
	})
}

func accountInput(a dto.AccountInfo) usecase.AccountInput {
	return usecase.AccountInput{
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.Email,
		Username:          a.Username,
		Password:          a.Password,
		ParticipationType: a.ParticipationType,
	}
}

func companyInput(ci dto.CompanyInfo) usecase.CompanyInput {
	return usecase.CompanyInput{
		CompanyName:     ci.CompanyName,
		Address:         ci.AddressLine,
		City:            ci.City,
		Region:          ci.Region,
		Country:         ci.Country,
		YearEstablished: ci.YearEstablished,
		Website:         ci.Website,
	}
}
