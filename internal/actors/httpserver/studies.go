package httpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/rbroggi/studyhub/internal/core/model"
)

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.CreateStudyArgs
	if !decode(w, r, &args) {
		return
	}
	resp, err := s.studies.Create(r.Context(), actor, args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, resp.Study)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	study, err := s.studies.Get(r.Context(), chi.URLParam(r, "path"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, study)
}

func (s *Server) handleRemoveStudy(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.Remove)
}

func (s *Server) handlePublishStudy(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.Publish)
}

func (s *Server) handleCloseStudy(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.Close)
}

func (s *Server) handleStartRecruit(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.StartRecruit)
}

func (s *Server) handleStopRecruit(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.StopRecruit)
}

func (s *Server) handleJoinStudy(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.Join)
}

func (s *Server) handleLeaveStudy(w http.ResponseWriter, r *http.Request) {
	s.studyAction(w, r, s.studies.Leave)
}

// studyAction runs an actor+path study operation and replies with the refreshed study.
func (s *Server) studyAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, actor *model.Account, path string) error) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	path := chi.URLParam(r, "path")
	if err := action(r.Context(), actor, path); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleUpdateStudyPath(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &args) {
		return
	}
	if err := s.studies.UpdatePath(r.Context(), actor, chi.URLParam(r, "path"), args.Path); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleUpdateStudyTitle(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &args) {
		return
	}
	if err := s.studies.UpdateTitle(r.Context(), actor, chi.URLParam(r, "path"), args.Title); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleUpdateStudyDescription(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.UpdateStudyDescriptionArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.studies.UpdateDescription(r.Context(), actor, chi.URLParam(r, "path"), args); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleAddStudyTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args tagArgs
	if !decode(w, r, &args) {
		return
	}
	tag, err := s.studies.AddTag(r.Context(), actor, chi.URLParam(r, "path"), args.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, tag)
}

func (s *Server) handleRemoveStudyTag(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args tagArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.studies.RemoveTag(r.Context(), actor, chi.URLParam(r, "path"), args.Title); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleAddStudyZone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args zoneArgs
	if !decode(w, r, &args) {
		return
	}
	zone, err := s.studies.AddZone(r.Context(), actor, chi.URLParam(r, "path"), args.City, args.Province)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, zone)
}

func (s *Server) handleRemoveStudyZone(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args zoneArgs
	if !decode(w, r, &args) {
		return
	}
	if err := s.studies.RemoveZone(r.Context(), actor, chi.URLParam(r, "path"), args.City, args.Province); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, r)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var args model.CreateMeetingArgs
	if !decode(w, r, &args) {
		return
	}
	resp, err := s.meetings.Create(r.Context(), actor, chi.URLParam(r, "path"), args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, resp.Meeting)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.meetings.List(r.Context(), chi.URLParam(r, "path"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, meetings)
}
