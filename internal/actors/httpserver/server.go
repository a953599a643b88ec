// Package httpserver is the JSON/HTTP transport. It decodes requests, resolves the
// acting account from the session header, invokes the use-cases, and maps the typed
// core errors onto HTTP status codes.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/rbroggi/studyhub/internal/core/access"
	"github.com/rbroggi/studyhub/internal/core/model"
)

// accountUsecase groups the account workflow operations the server exposes.
type accountUsecase interface {
	SignUp(ctx context.Context, args model.SignUpArgs) (*model.SignUpResponse, error)
	CompleteVerification(ctx context.Context, args model.CompleteVerificationArgs) (*model.CompleteVerificationResponse, error)
	ResendVerification(ctx context.Context, email string) error
	RequestLoginLink(ctx context.Context, email string) error
	ConsumeLoginLink(ctx context.Context, args model.ConsumeLoginLinkArgs) (*model.ConsumeLoginLinkResponse, error)
	GetAccount(ctx context.Context, nickname string) (*model.Account, error)
	UpdateProfile(ctx context.Context, actor *model.Account, args model.UpdateProfileArgs) error
	UpdatePassword(ctx context.Context, actor *model.Account, args model.UpdatePasswordArgs) error
	UpdateNotifications(ctx context.Context, actor *model.Account, args model.UpdateNotificationsArgs) error
	UpdateNickname(ctx context.Context, actor *model.Account, args model.UpdateNicknameArgs) error
	AddTag(ctx context.Context, actor *model.Account, title string) (*model.Tag, error)
	RemoveTag(ctx context.Context, actor *model.Account, title string) error
	AddZone(ctx context.Context, actor *model.Account, city, province string) (*model.Zone, error)
	RemoveZone(ctx context.Context, actor *model.Account, city, province string) error
}

// studyUsecase groups the study lifecycle operations the server exposes.
type studyUsecase interface {
	Create(ctx context.Context, actor *model.Account, args model.CreateStudyArgs) (*model.CreateStudyResponse, error)
	Get(ctx context.Context, path string) (*model.Study, error)
	Publish(ctx context.Context, actor *model.Account, path string) error
	Close(ctx context.Context, actor *model.Account, path string) error
	StartRecruit(ctx context.Context, actor *model.Account, path string) error
	StopRecruit(ctx context.Context, actor *model.Account, path string) error
	UpdatePath(ctx context.Context, actor *model.Account, path, newPath string) error
	UpdateTitle(ctx context.Context, actor *model.Account, path, newTitle string) error
	UpdateDescription(ctx context.Context, actor *model.Account, path string, args model.UpdateStudyDescriptionArgs) error
	AddTag(ctx context.Context, actor *model.Account, path, title string) (*model.Tag, error)
	RemoveTag(ctx context.Context, actor *model.Account, path, title string) error
	AddZone(ctx context.Context, actor *model.Account, path, city, province string) (*model.Zone, error)
	RemoveZone(ctx context.Context, actor *model.Account, path, city, province string) error
	Join(ctx context.Context, actor *model.Account, path string) error
	Leave(ctx context.Context, actor *model.Account, path string) error
	Remove(ctx context.Context, actor *model.Account, path string) error
}

// meetingUsecase groups the meeting operations the server exposes.
type meetingUsecase interface {
	Create(ctx context.Context, actor *model.Account, path string, args model.CreateMeetingArgs) (*model.CreateMeetingResponse, error)
	List(ctx context.Context, path string) ([]model.Meeting, error)
}

// ServerArgs are the mandatory arguments to build a Server.
type ServerArgs struct {
	// Addr is the listen address, host:port.
	Addr string

	// Accounts is the account workflow use-case.
	Accounts accountUsecase

	// Studies is the study lifecycle use-case.
	Studies studyUsecase

	// Meetings is the meeting use-case.
	Meetings meetingUsecase

	// Access resolves session tokens into acting accounts.
	Access *access.Coordinator
}

// Server is the HTTP server actor.
type Server struct {
	httpServer *http.Server
	accounts   accountUsecase
	studies    studyUsecase
	meetings   meetingUsecase
	access     *access.Coordinator
}

// NewServer creates a new Server.
func NewServer(args ServerArgs) *Server {
	s := &Server{
		accounts: args.Accounts,
		studies:  args.Studies,
		meetings: args.Meetings,
		access:   args.Access,
	}
	s.httpServer = &http.Server{
		Addr:         args.Addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start starts serving. It blocks until the server stops.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.sessionMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Post("/sign-up", s.handleSignUp)
	r.Get("/check-email-token", s.handleCheckEmailToken)
	r.Post("/check-email-token", s.handleCheckEmailToken)
	r.Post("/resend-check-email", s.handleResendCheckEmail)
	r.Post("/email-login", s.handleEmailLogin)
	r.Get("/login-by-email", s.handleLoginByEmail)
	r.Post("/login-by-email", s.handleLoginByEmail)

	r.Get("/accounts/{nickname}", s.handleGetAccount)

	r.Route("/settings", func(r chi.Router) {
		r.Put("/profile", s.handleUpdateProfile)
		r.Put("/password", s.handleUpdatePassword)
		r.Put("/notifications", s.handleUpdateNotifications)
		r.Put("/nickname", s.handleUpdateNickname)
		r.Post("/tags", s.handleAddAccountTag)
		r.Delete("/tags", s.handleRemoveAccountTag)
		r.Post("/zones", s.handleAddAccountZone)
		r.Delete("/zones", s.handleRemoveAccountZone)
	})

	r.Route("/studies", func(r chi.Router) {
		r.Post("/", s.handleCreateStudy)
		r.Route("/{path}", func(r chi.Router) {
			r.Get("/", s.handleGetStudy)
			r.Delete("/", s.handleRemoveStudy)
			r.Post("/publish", s.handlePublishStudy)
			r.Post("/close", s.handleCloseStudy)
			r.Post("/recruit/start", s.handleStartRecruit)
			r.Post("/recruit/stop", s.handleStopRecruit)
			r.Put("/path", s.handleUpdateStudyPath)
			r.Put("/title", s.handleUpdateStudyTitle)
			r.Put("/description", s.handleUpdateStudyDescription)
			r.Post("/tags", s.handleAddStudyTag)
			r.Delete("/tags", s.handleRemoveStudyTag)
			r.Post("/zones", s.handleAddStudyZone)
			r.Delete("/zones", s.handleRemoveStudyZone)
			r.Post("/join", s.handleJoinStudy)
			r.Post("/leave", s.handleLeaveStudy)
			r.Post("/meetings", s.handleCreateMeeting)
			r.Get("/meetings", s.handleListMeetings)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, map[string]string{"status": "serving"})
}
