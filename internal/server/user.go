package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	userdomain "github.com/hogarlink/hogar/internal/user/domain"
)

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	Password  string `json:"password"`
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		AbortWithError(c, newValidationError("birth_date", "invalid_birth_date", "invalid birth date"))
		return
	}

	profile, err := s.userSvc.Create(c.Request.Context(), userdomain.CreateUserRequest{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		BirthDate: birthDate,
		Password:  req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": profile})
}

func (s *Server) ListUsers(c *gin.Context) {
	profiles, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

func (s *Server) GetUserByID(c *gin.Context) {
	profile, err := s.userSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := userdomain.UpdateUserRequest{
		ID:        strings.TrimSpace(c.Param("id")),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(*req.BirthDate)
		if err != nil {
			AbortWithError(c, newValidationError("birth_date", "invalid_birth_date", "invalid birth date"))
			return
		}
		update.BirthDate = &birthDate
	}

	profile, err := s.userSvc.Update(c.Request.Context(), update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) DeleteUser(c *gin.Context) {
	profile, err := s.userSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	profile, err := s.userSvc.Login(c.Request.Context(), userdomain.LoginRequest{
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func parseBirthDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(raw))
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidID,
		userdomain.ErrInvalidName,
		userdomain.ErrInvalidSurname,
		userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidPhone,
		userdomain.ErrInvalidBirthDate,
		userdomain.ErrInvalidPassword:
		return true
	default:
		return false
	}
}
