package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readingcorner/library-circulation/app/features/command/addbook"
	"github.com/readingcorner/library-circulation/app/features/command/registerstudent"
	"github.com/readingcorner/library-circulation/app/features/command/removebook"
	"github.com/readingcorner/library-circulation/app/features/command/removestudent"
	"github.com/readingcorner/library-circulation/app/features/command/updatebook"
	"github.com/readingcorner/library-circulation/app/features/command/updatestudent"
	"github.com/readingcorner/library-circulation/app/features/query/listbooks"
	"github.com/readingcorner/library-circulation/app/features/query/liststudents"
	"github.com/readingcorner/library-circulation/app/features/query/studentprofile"
	"github.com/readingcorner/library-circulation/app/shared/core"
)

const defaultTotalCopies = 1

type successResponse struct {
	Success bool `json:"success"`
}

type studentRequest struct {
	Barcode      string `json:"barcode"`
	Name         string `json:"name" binding:"required"`
	StudentClass string `json:"student_class" binding:"required"`
	ProfilePic   string `json:"profile_pic"`
	Active       *bool  `json:"active"`
}

func (r studentRequest) details() core.StudentDetails {
	return core.StudentDetails{
		Name:       r.Name,
		Class:      r.StudentClass,
		ProfilePic: r.ProfilePic,
	}
}

type bookRequest struct {
	Barcode     string `json:"barcode"`
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	CoverImage  string `json:"cover_image"`
	TotalCopies *int   `json:"total_copies"`
}

func (r bookRequest) details() core.BookDetails {
	return core.BookDetails{
		Title:      r.Title,
		Author:     r.Author,
		Category:   r.Category,
		CoverImage: r.CoverImage,
	}
}

// barcodeMatches rejects bodies that try to move a record to another barcode.
func barcodeMatches(c *gin.Context, bodyBarcode string) bool {
	if bodyBarcode != "" && bodyBarcode != c.Param("barcode") {
		abortWithDetail(c, http.StatusBadRequest, detailBarcodeImmutable)
		return false
	}

	return true
}

func (a *api) listStudents(c *gin.Context) {
	students, err := a.handlers.ListStudents.Handle(c.Request.Context(), liststudents.BuildQuery())
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

func (a *api) studentProfile(c *gin.Context) {
	profile, err := a.handlers.StudentProfile.Handle(c.Request.Context(), studentprofile.BuildQuery(c.Param("barcode")))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (a *api) registerStudent(c *gin.Context) {
	var req studentRequest
	if !bind(c, &req) {
		return
	}

	result, err := a.handlers.RegisterStudent.Handle(c.Request.Context(), registerstudent.BuildCommand(req.Barcode, req.details()))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Student)
}

func (a *api) updateStudent(c *gin.Context) {
	var req studentRequest
	if !bind(c, &req) || !barcodeMatches(c, req.Barcode) {
		return
	}

	command := updatestudent.BuildCommand(c.Param("barcode"), req.details(), req.Active)

	if _, err := a.handlers.UpdateStudent.Handle(c.Request.Context(), command); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (a *api) removeStudent(c *gin.Context) {
	if _, err := a.handlers.RemoveStudent.Handle(c.Request.Context(), removestudent.BuildCommand(c.Param("barcode"))); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (a *api) listBooks(c *gin.Context) {
	books, err := a.handlers.ListBooks.Handle(c.Request.Context(), listbooks.BuildQuery())
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, books)
}

func (a *api) addBook(c *gin.Context) {
	var req bookRequest
	if !bind(c, &req) {
		return
	}

	totalCopies := defaultTotalCopies
	if req.TotalCopies != nil {
		totalCopies = *req.TotalCopies
	}

	result, err := a.handlers.AddBook.Handle(c.Request.Context(), addbook.BuildCommand(req.Barcode, req.details(), totalCopies))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Book)
}

func (a *api) updateBook(c *gin.Context) {
	var req bookRequest
	if !bind(c, &req) || !barcodeMatches(c, req.Barcode) {
		return
	}

	command := updatebook.BuildCommand(c.Param("barcode"), req.details(), req.TotalCopies)

	if _, err := a.handlers.UpdateBook.Handle(c.Request.Context(), command); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (a *api) removeBook(c *gin.Context) {
	if _, err := a.handlers.RemoveBook.Handle(c.Request.Context(), removebook.BuildCommand(c.Param("barcode"))); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}
