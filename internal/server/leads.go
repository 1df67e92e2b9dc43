package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/medtravel/internal/catalog"
)

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.store.Settings(c.Request.Context())
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		fail(c, http.StatusBadRequest, "settings must be an object of strings")
		return
	}
	settings, err := s.store.UpdateSettings(c.Request.Context(), values)
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, settings)
}

// createInquiry records a contact-form lead. Without an explicit language the
// store detects it from the message.
func (s *Server) createInquiry(c *gin.Context) {
	var in catalog.Inquiry
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.store.CreateInquiry(c.Request.Context(), &in); err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, in)
}

func (s *Server) listInquiries(c *gin.Context) {
	items, err := s.store.Inquiries(c.Request.Context(), catalog.InquiryStatus(c.Query("status")))
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

type statusRequest struct {
	Status catalog.InquiryStatus `json:"status"`
}

func (s *Server) updateInquiry(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := s.store.SetInquiryStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, in)
}

type subscribeRequest struct {
	Email    string `json:"email"`
	Language string `json:"language"`
}

// subscribe is idempotent: an address already on the list gets 200.
func (s *Server) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Language == "" {
		req.Language = s.sessionLanguage(c).Code
	}

	created, err := s.store.Subscribe(c.Request.Context(), req.Email, req.Language)
	if err != nil {
		s.failErr(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, envelope{Success: true, Message: "already subscribed"})
		return
	}
	c.JSON(http.StatusCreated, envelope{Success: true, Message: "subscribed"})
}

func (s *Server) listSubscribers(c *gin.Context) {
	subs, err := s.store.Subscribers(c.Request.Context())
	if err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, subs)
}

func (s *Server) unsubscribe(c *gin.Context) {
	if err := s.store.Unsubscribe(c.Request.Context(), c.Param("email")); err != nil {
		s.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}
