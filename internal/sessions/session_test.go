package sessions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/vstep-portal/backend/internal/drafts"
	"github.com/vstep-portal/backend/internal/models"
)

type SessionSuite struct {
	suite.Suite
	mgr  *Manager
	sess *Session
}

func (s *SessionSuite) SetupTest() {
	s.mgr = NewManager(drafts.NewDefaults("2024-06-15"))
	s.sess = s.mgr.Create()
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) TestInitialState() {
	st := s.sess.State()
	s.Equal(ViewCompose, st.View)
	s.Empty(st.LastRecordID)
	s.False(st.Submitting)
	s.Equal("Nam", st.Draft.Gender)
}

func (s *SessionSuite) TestManagerLookup() {
	found, err := s.mgr.Get(s.sess.ID())
	s.Require().NoError(err)
	s.Same(s.sess, found)

	other := s.mgr.Create()
	s.NotEqual(s.sess.ID(), other.ID())

	_, err = s.mgr.Get(uuid.UUID{1, 2, 3})
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *SessionSuite) TestSubmitLifecycle() {
	s.Run("only one submit runs at a time", func() {
		s.Require().NoError(s.sess.BeginSubmit())
		s.Require().ErrorIs(s.sess.BeginSubmit(), ErrSubmitInFlight)
		s.sess.AbortSubmit()
	})

	s.Run("a failed submit leaves the session in compose", func() {
		s.Require().NoError(s.sess.BeginSubmit())
		s.sess.AbortSubmit()
		s.Equal(ViewCompose, s.sess.State().View)
	})

	s.Run("a finished submit moves to success with the record id", func() {
		s.Require().NoError(s.sess.BeginSubmit())
		s.sess.FinishSubmit("1715692800000")
		st := s.sess.State()
		s.Equal(ViewSuccess, st.View)
		s.Equal("1715692800000", st.LastRecordID)
	})

	s.Run("submit is a compose-view event", func() {
		s.Require().ErrorIs(s.sess.BeginSubmit(), ErrBadTransition)
	})
}

func (s *SessionSuite) TestNavigation() {
	s.Run("success is unreachable without a submitted record", func() {
		s.Require().ErrorIs(s.sess.Navigate(ViewSuccess), ErrBadTransition)
	})

	s.Run("admin is reachable from anywhere and keeps the draft", func() {
		s.Require().NoError(s.sess.Builder().UpdateField(models.FieldFullName, "Trần Thị B"))
		s.Require().NoError(s.sess.Navigate(ViewAdmin))
		s.Require().NoError(s.sess.Navigate(ViewCompose))
		s.Equal("Trần Thị B", s.sess.State().Draft.FullName)
	})

	s.Run("success is reachable again while a record exists", func() {
		s.Require().NoError(s.sess.BeginSubmit())
		s.sess.FinishSubmit("1715692800000")
		s.Require().NoError(s.sess.Navigate(ViewAdmin))
		s.Require().NoError(s.sess.Navigate(ViewSuccess))
	})

	s.Run("unknown views are rejected", func() {
		s.Require().ErrorIs(s.sess.Navigate(View("checkout")), ErrBadTransition)
	})
}

// TestViewPinnedDuringSubmit verifies navigation is refused while a submit is
// in flight, so FinishSubmit can only ever move compose to success.
func (s *SessionSuite) TestViewPinnedDuringSubmit() {
	s.Require().NoError(s.sess.BeginSubmit())

	s.Require().ErrorIs(s.sess.Navigate(ViewAdmin), ErrBadTransition)
	s.Require().ErrorIs(s.sess.Navigate(ViewCompose), ErrBadTransition)

	s.sess.FinishSubmit("1715692800000")
	s.Equal(ViewSuccess, s.sess.State().View)

	// navigation works again once the submit has settled
	s.Require().NoError(s.sess.Navigate(ViewAdmin))
}

func (s *SessionSuite) TestReset() {
	s.Require().NoError(s.sess.Builder().UpdateField(models.FieldFullName, "Trần Thị B"))
	s.Require().NoError(s.sess.BeginSubmit())
	s.sess.FinishSubmit("1715692800000")

	s.sess.Reset()

	st := s.sess.State()
	s.Equal(ViewCompose, st.View)
	s.Empty(st.LastRecordID)
	s.Empty(st.Draft.FullName)
	s.Equal("Thí sinh tự do", st.Draft.CandidateType)
}
