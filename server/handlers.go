package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"verbum-lector/internal/datauri"
	"verbum-lector/internal/editor"
	"verbum-lector/models"
	"verbum-lector/services"
)

// SessionResponse is the full state of a session.
type SessionResponse struct {
	Status   models.SessionStatus    `json:"status"`
	Segments []editor.Segment        `json:"segments"`
	Rows     []models.TranslationRow `json:"rows"`
	Focus    *editor.FocusState      `json:"focus,omitempty"`
}

// AudioPayload submits audio as a data URI.
type AudioPayload struct {
	AudioDataURI string `json:"audioDataUri" binding:"required"`
	FileName     string `json:"fileName"`
}

// PositionPayload names a segment by position.
type PositionPayload struct {
	Position *int `json:"position" binding:"required"`
	Offset   int  `json:"offset"`
}

// TextPayload replaces a segment's text.
type TextPayload struct {
	Text *string `json:"text" binding:"required"`
}

// IndexPayload names a target position.
type IndexPayload struct {
	Index *int `json:"index" binding:"required"`
}

// FocusPayload reports focus on a segment.
type FocusPayload struct {
	Index        *int `json:"index" binding:"required"`
	CursorOffset int  `json:"cursorOffset"`
}

// OffsetPayload reports a cursor offset.
type OffsetPayload struct {
	Offset int `json:"offset"`
}

// SegmentResponse reports a segment created by an edit.
type SegmentResponse struct {
	Segment editor.Segment `json:"segment"`
	Index   int            `json:"index"`
}

func (s *Server) session(c *gin.Context) (*services.Session, bool) {
	sess, err := s.sessions.get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return sess, true
}

func bind(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		fail(c, uploadError(err))
		return false
	}
	return true
}

func segmentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("segmentId"))
	if err != nil {
		fail(c, fmt.Errorf("%w: segment id %q is not a number", errBadRequest, c.Param("segmentId")))
		return 0, false
	}
	return id, true
}

func snapshot(sess *services.Session) SessionResponse {
	resp := SessionResponse{
		Status:   sess.Status(),
		Segments: sess.Segments(),
		Rows:     sess.Rows(),
	}
	if st, ok := sess.FocusState(); ok {
		resp.Focus = &st
	}
	return resp
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.create()
	s.log.Info("created session %s", sess.ID())
	c.JSON(http.StatusCreated, gin.H{"id": sess.ID()})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot(sess))
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.remove(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// submitAudio accepts either a JSON data URI or a multipart "file" upload.
func (s *Server) submitAudio(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	var payload AudioPayload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			fail(c, uploadError(err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			fail(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			fail(c, uploadError(err))
			return
		}
		payload.FileName = fh.Filename
		payload.AudioDataURI = datauri.FromFile(fh.Filename, data)
	} else if !bind(c, &payload) {
		return
	}

	epoch, err := sess.Submit(payload.AudioDataURI, payload.FileName)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"epoch": epoch, "status": sess.Status()})
}

// uploadError keeps a body-limit error intact so it maps to 413, and marks
// anything else as a bad request.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func (s *Server) translate(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if err := sess.Translate(); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": sess.Status()})
}

func (s *Server) fullTranscript(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, sess.FullTranscript())
}

func (s *Server) fullTranslation(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, sess.FullTranslation())
}

func (s *Server) insertSegment(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var payload PositionPayload
	if !bind(c, &payload) {
		return
	}
	seg, index, err := sess.InsertAfter(*payload.Position)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SegmentResponse{Segment: seg, Index: index})
}

func (s *Server) splitSegment(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var payload PositionPayload
	if !bind(c, &payload) {
		return
	}
	seg, index, err := sess.SplitAt(*payload.Position, payload.Offset)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, SegmentResponse{Segment: seg, Index: index})
}

func (s *Server) updateSegment(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	id, ok := segmentID(c)
	if !ok {
		return
	}
	var payload TextPayload
	if !bind(c, &payload) {
		return
	}
	if err := sess.UpdateText(id, *payload.Text); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": sess.Segments()})
}

func (s *Server) removeSegment(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	id, ok := segmentID(c)
	if !ok {
		return
	}
	if err := sess.Remove(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) moveSegment(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	id, ok := segmentID(c)
	if !ok {
		return
	}
	var payload IndexPayload
	if !bind(c, &payload) {
		return
	}
	if err := sess.Move(id, *payload.Index); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": sess.Segments()})
}

func (s *Server) focus(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var payload FocusPayload
	if !bind(c, &payload) {
		return
	}
	sess.Focus(*payload.Index, payload.CursorOffset)
	c.Status(http.StatusNoContent)
}

func (s *Server) moveCursor(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var payload OffsetPayload
	if !bind(c, &payload) {
		return
	}
	sess.MoveCursor(payload.Offset)
	c.Status(http.StatusNoContent)
}

func (s *Server) blur(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var payload OffsetPayload
	if !bind(c, &payload) {
		return
	}
	sess.Blur(payload.Offset)
	c.Status(http.StatusNoContent)
}

func (s *Server) splitAtFocus(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	req, err := sess.SplitAtFocus()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (s *Server) insertAfterFocused(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	req, err := sess.InsertAfterFocused()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}
