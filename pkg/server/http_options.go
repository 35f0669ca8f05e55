package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kumarabd/validation-plane/tuner/pkg/service"
	"github.com/kumarabd/validation-plane/tuner/pkg/statsopts"
)

// errKind maps a construction error onto its contractual kind label.
func errKind(err error) string {
	var typeErr *statsopts.TypeError
	var valueErr *statsopts.ValueError
	switch {
	case errors.As(err, &typeErr):
		return "type"
	case errors.As(err, &valueErr):
		return "value"
	default:
		return "parse"
	}
}

// getOptionsHandler serves the current canonical document
func (s *HTTP) getOptionsHandler(c *gin.Context) {
	doc, revision := s.service.Current()
	c.Header("X-Options-Revision", revision)
	c.Data(http.StatusOK, "application/json", []byte(doc))
}

// putOptionsHandler replaces the current document with the request body
// (persisted layout). Parse errors, including unknown keys, are 400; a
// document that parses but breaks a range invariant is 422.
func (s *HTTP) putOptionsHandler(c *gin.Context) {
	reader, err := getBodyReader(c.Request)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	defer reader.Close()

	payload, err := io.ReadAll(io.LimitReader(reader, s.config.MaxBodyBytes))
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	revision, err := s.service.Replace(c.Request.Context(), string(payload), "http")
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, service.ErrInvalidOptions) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
				"kind":  errKind(err),
				"error": err.Error(),
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"revision": revision})
}

// validateOptionsHandler runs full construction validation over a request
// carrying the construction parameter names as JSON keys. Nothing is adopted.
func (s *HTTP) validateOptionsHandler(c *gin.Context) {
	reader, err := getBodyReader(c.Request)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	defer reader.Close()

	var params statsopts.Params
	dec := json.NewDecoder(io.LimitReader(reader, s.config.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&params); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid validation request"})
		return
	}

	doc, err := s.service.Check(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid": false,
			"kind":  errKind(err),
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"options": json.RawMessage(doc),
	})
}

// samplingHandler serves the derived sampling policy of the current object
func (s *HTTP) samplingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Sampling())
}

// historyHandler serves the recently accepted revisions, newest first
func (s *HTTP) historyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"revisions": s.service.History(s.config.HistoryLimit),
	})
}
