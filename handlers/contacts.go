package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contactbook/apperr"
	"contactbook/middleware"
	"contactbook/models"
	"contactbook/services"
)

type ContactsHandler struct {
	Store   services.ContactStore
	Log     *slog.Logger
	Timeout time.Duration
}

type createContactInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required,len=10,number"`
}

type updateContactInput struct {
	Name  *string `json:"name" binding:"omitempty,min=1"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone" binding:"omitempty,len=10,number"`
}

type favoriteInput struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

func (h *ContactsHandler) List(c *gin.Context) {
	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contacts, err := h.Store.List(ctx, owner)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}

	c.JSON(http.StatusOK, contacts)
}

func (h *ContactsHandler) Get(c *gin.Context) {
	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contact, err := h.Store.Get(ctx, c.Param("id"), owner)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactsHandler) Create(c *gin.Context) {
	var input createContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contact, err := h.Store.Create(ctx, owner, services.ContactInput{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	})
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactsHandler) Update(c *gin.Context) {
	var input updateContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	update := services.ContactUpdate{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	if update.Empty() {
		apperr.Write(c, h.Log, apperr.Validation("Body must have at least one field"))
		return
	}

	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contact, err := h.Store.Update(ctx, c.Param("id"), owner, update)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactsHandler) SetFavorite(c *gin.Context) {
	var input favoriteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Write(c, h.Log, apperr.Validation(err.Error()))
		return
	}

	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contact, err := h.Store.SetFavorite(ctx, c.Param("id"), owner, *input.Favorite)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactsHandler) Delete(c *gin.Context) {
	owner := middleware.CurrentUser(c).ID

	ctx, cancel := storeCtx(h.Timeout)
	defer cancel()

	contact, err := h.Store.Delete(ctx, c.Param("id"), owner)
	if err != nil {
		apperr.Write(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}
