package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readingcorner/library-circulation/app/features/command/borrowbook"
	"github.com/readingcorner/library-circulation/app/features/command/reconcileoverdue"
	"github.com/readingcorner/library-circulation/app/features/command/returnbook"
	"github.com/readingcorner/library-circulation/app/features/query/listtransactions"
	"github.com/readingcorner/library-circulation/app/features/query/statistics"
	"github.com/readingcorner/library-circulation/app/shared/core"
)

type loanRequest struct {
	StudentBarcode string `json:"student_barcode" binding:"required"`
	BookBarcode    string `json:"book_barcode" binding:"required"`
}

type borrowResponse struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message"`
	Transaction core.Transaction `json:"transaction"`
}

type returnResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OverdueDays int    `json:"overdue_days"`
}

func (a *api) borrow(c *gin.Context) {
	var req loanRequest
	if !bind(c, &req) {
		return
	}

	command := borrowbook.BuildCommand(req.StudentBarcode, req.BookBarcode, a.now())

	result, err := a.handlers.BorrowBook.Handle(c.Request.Context(), command)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, borrowResponse{
		Success:     true,
		Message:     result.Message,
		Transaction: result.Transaction,
	})
}

func (a *api) giveBack(c *gin.Context) {
	var req loanRequest
	if !bind(c, &req) {
		return
	}

	command := returnbook.BuildCommand(req.StudentBarcode, req.BookBarcode, a.now())

	result, err := a.handlers.ReturnBook.Handle(c.Request.Context(), command)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, returnResponse{
		Success:     true,
		Message:     result.Message,
		OverdueDays: result.Transaction.OverdueDays,
	})
}

func (a *api) listTransactions(c *gin.Context) {
	query := listtransactions.BuildQuery(c.Query("status"), c.Query("student_barcode"))

	result, err := a.handlers.ListTransactions.Handle(c.Request.Context(), query)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Transactions)
}

// overdue refreshes the stored overdue days before answering, so reading this route writes.
func (a *api) overdue(c *gin.Context) {
	result, err := a.handlers.ReconcileOverdue.Handle(c.Request.Context(), reconcileoverdue.BuildCommand(a.now()))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Overdue)
}

func (a *api) statistics(c *gin.Context) {
	result, err := a.handlers.Statistics.Handle(c.Request.Context(), statistics.BuildQuery(a.now()))
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
