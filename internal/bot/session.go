package bot

import "sync"

// Scene is the conversational mode a user's session is in.
type Scene string

const (
	SceneIdle            Scene = ""
	SceneSearchByCode    Scene = "search_by_code"
	SceneUploadMovie     Scene = "upload_movie"
	SceneEditTitle       Scene = "edit_movie_title"
	SceneEditDescription Scene = "edit_movie_description"
	SceneEditCode        Scene = "edit_movie_code"
)

// Upload wizard steps.
const (
	StepCode = iota + 1
	StepTitle
	StepDescription
	StepVideo
	StepThumbnail
	StepPremiere
)

// MovieDraft accumulates the upload wizard's answers until the final
// step persists them as a Movie.
type MovieDraft struct {
	Code                string
	Title               string
	Description         string
	FileID              string
	FileType            string
	Duration            int
	FileSize            int64
	ThumbnailFileID     string
	AutoThumbnailFileID string
}

// Session is one user's conversational state. The zero value is idle.
type Session struct {
	Scene       Scene
	Step        int
	Draft       *MovieDraft
	EditMovieID uint
}

// Sessions is an in-memory session store keyed by Telegram user id.
// Entries are lost on restart; an in-progress wizard is simply
// abandoned.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]Session
}

// NewSessions creates an empty session store
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]Session)}
}

// Get returns the user's session, or an idle one if none exists.
func (s *Sessions) Get(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

// Set stores the user's session, overwriting any previous state.
func (s *Sessions) Set(userID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = sess
}

// Clear resets the user's session to idle.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}
