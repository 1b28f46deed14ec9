// Package web is the HTTP surface: a JSON API, the embedded evaluation page,
// and the PDF passthrough.
package web

import (
	_ "embed"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"review-eval-app/internal/dataset"
	"review-eval-app/internal/evalform"
	"review-eval-app/internal/pdfstore"
	"review-eval-app/internal/results"
	"review-eval-app/internal/review"
	"review-eval-app/internal/session"
)

//go:embed index.html
var indexHTML []byte

type Server struct {
	snap     *dataset.Snapshot
	sessions *session.Store
	writer   *results.Writer
	pdfs     *pdfstore.Source
}

func NewRouter(snap *dataset.Snapshot, sessions *session.Store, writer *results.Writer, pdfs *pdfstore.Source) *gin.Engine {
	s := &Server{snap: snap, sessions: sessions, writer: writer, pdfs: pdfs}

	r := gin.Default()
	r.Use(corsMiddleware(), requestIDMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
	})

	api := r.Group("/api")
	api.GET("/users", s.listUsers)
	api.POST("/sessions", s.createSession)
	api.GET("/papers/:id/form", s.renderForm)
	api.PUT("/papers/:id/ratings", s.setRating)
	api.POST("/papers/:id/submit", s.submit)
	api.GET("/papers/:id/pdf", s.servePDF)

	return r
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"users":    s.snap.UserNames(),
		"warnings": s.snap.Warnings(),
	})
}

type sessionRequest struct {
	Name string `json:"name"`
}

func (s *Server) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A user name is required."})
		return
	}

	user, ok := s.snap.UserByName(req.Name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Unknown user '%s'.", req.Name)})
		return
	}

	assignment, ok := s.snap.Assignment(user.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No papers assigned."})
		return
	}

	var papers []string
	for _, p := range []string{assignment.Paper1, assignment.Paper2} {
		if p != "" {
			papers = append(papers, p)
		}
	}

	sess := s.sessions.Create(user.ID)
	log.Printf("Session started for user %s (%d papers)\n", user.ID, len(papers))
	c.JSON(http.StatusOK, gin.H{
		"token":   sess.Token,
		"user_id": user.ID,
		"papers":  papers,
	})
}

func (s *Server) currentSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := s.sessions.Get(c.GetHeader("X-Session-Token"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session."})
	}
	return sess, ok
}

func (s *Server) resolvePaper(c *gin.Context) (dataset.Paper, bool) {
	id := c.Param("id")
	paper, ok := s.snap.FindPaper(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Paper ID '%s' not found.", id)})
	}
	return paper, ok
}

// reviewsEmpty reports whether neither variant carries any usable text, in
// which case there is no form to render.
func reviewsEmpty(paper dataset.Paper) bool {
	for _, v := range dataset.Variants {
		text, ok := review.ExtractText(paper.Reviews[v])
		if !ok || strings.TrimSpace(text) != "" {
			return false
		}
	}
	return true
}

type formResponse struct {
	PaperID        string              `json:"paper_id"`
	Collection     string              `json:"collection"`
	PDFAvailable   bool                `json:"pdf_available"`
	GradingOptions []string            `json:"grading_options"`
	Slots          []evalform.SlotView `json:"slots"`
}

func (s *Server) renderForm(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	paper, ok := s.resolvePaper(c)
	if !ok {
		return
	}
	if reviewsEmpty(paper) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No review data found for this paper."})
		return
	}

	order := sess.Order(paper.ID)
	resp := formResponse{
		PaperID:        paper.ID,
		Collection:     paper.Collection,
		PDFAvailable:   s.pdfs.Available(paper),
		GradingOptions: evalform.GradingOptions,
	}
	for i, v := range order {
		resp.Slots = append(resp.Slots, evalform.BuildSlot(paper.ID, evalform.SlotLabels[i], v, paper.Reviews[v], sess))
	}
	c.JSON(http.StatusOK, resp)
}

type ratingRequest struct {
	Slot    string `json:"slot"`
	Section string `json:"section"`
	Index   int    `json:"index"`
	Value   string `json:"value"`
}

func (s *Server) setRating(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	paper, ok := s.resolvePaper(c)
	if !ok {
		return
	}

	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed rating."})
		return
	}
	if !evalform.ValidOption(req.Value) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Unknown rating value '%s'.", req.Value)})
		return
	}

	order := sess.Order(paper.ID)
	var variant dataset.Variant
	switch req.Slot {
	case evalform.SlotLabels[0]:
		variant = order[0]
	case evalform.SlotLabels[1]:
		variant = order[1]
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Unknown slot '%s'.", req.Slot)})
		return
	}

	parsed := review.ParsePayload(paper.Reviews[variant])
	var key string
	switch req.Section {
	case review.SectionSummary:
		if req.Index != 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The summary has a single control."})
			return
		}
		key = evalform.SummaryKey(paper.ID, variant)
	case review.SectionStrengths, review.SectionWeaknesses, review.SectionQuestions:
		points := parsed.Section(req.Section)
		if req.Index < 0 || req.Index >= len(points) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("No point %d in %s.", req.Index, req.Section)})
			return
		}
		key = evalform.PointKey(paper.ID, variant, req.Section, req.Index)
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Unknown section '%s'.", req.Section)})
		return
	}

	sess.SetRating(key, req.Value)
	c.JSON(http.StatusOK, gin.H{"status": "stored"})
}

func (s *Server) submit(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	paper, ok := s.resolvePaper(c)
	if !ok {
		return
	}

	records, missing := evalform.Collect(paper.ID, sess.UserID, paper.Reviews, sess.Order(paper.ID), sess)
	if len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Please ensure all fields (Summary and Points) are rated for both Review sets.",
			"missing": missing,
		})
		return
	}

	if err := s.writer.Append(records); err != nil {
		log.Println("Error writing results:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't save the evaluation."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved successfully!", "rows": len(records)})
}

func (s *Server) servePDF(c *gin.Context) {
	paper, ok := s.resolvePaper(c)
	if !ok {
		return
	}

	data, err := s.pdfs.Fetch(paper)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("PDF file not found at: %s", paper.PDFPath)})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", paper.ID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}
