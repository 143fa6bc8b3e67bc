package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readingcorner/library-circulation/app/features/query/studentprofile"
	"github.com/readingcorner/library-circulation/app/shared/core"
)

type studentLoginRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}

type studentLoginResponse struct {
	Success bool         `json:"success"`
	Student core.Student `json:"student"`
}

type adminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type adminView struct {
	Username string `json:"username"`
}

type adminLoginResponse struct {
	Success bool      `json:"success"`
	Admin   adminView `json:"admin"`
	Token   string    `json:"token"`
}

// studentLogin identifies a student by barcode. There is no secret, the barcode card is the credential.
func (a *api) studentLogin(c *gin.Context) {
	var req studentLoginRequest
	if !bind(c, &req) {
		return
	}

	profile, err := a.handlers.StudentProfile.Handle(c.Request.Context(), studentprofile.BuildQuery(req.Barcode))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, studentLoginResponse{Success: true, Student: profile.Student})
}

func (a *api) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !bind(c, &req) {
		return
	}

	token, err := a.handlers.Authenticator.Login(c.Request.Context(), req.Username, req.Password, a.now())
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, adminLoginResponse{
		Success: true,
		Admin:   adminView{Username: req.Username},
		Token:   token,
	})
}
