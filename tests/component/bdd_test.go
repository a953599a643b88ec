//go:build component
// +build component

package component

import (
	"net/http"
	"net/url"

	"github.com/rbroggi/studyhub/internal/core/model"
)

func (s *ComponentTestSuite) TestSignUp() {
	_, when, then := s.gherkin()

	when().
		aSignUpRequestIsIssued()

	then().
		theSignUpResponseContainsAFreshAccount().
		aVerificationMailWillEventuallyBeDelivered()
}

func (s *ComponentTestSuite) TestEmailVerification() {
	given, when, then := s.gherkin()

	given().
		aSignedUpAccount()

	when().
		theMailedVerificationLinkIsFollowed()

	then().
		theVerificationResponseContainsASession().
		theAccountShowsAsVerified()
}

func (s *ComponentTestSuite) TestPasswordlessLogin() {
	given, when, then := s.gherkin()

	given().
		aVerifiedAccount()

	when().
		anEmailLoginIsRequested()

	then().
		aLoginMailWillEventuallyBeDelivered().
		theMailedLoginLinkAuthenticates()
}

func (s *ComponentTestSuite) TestStudyLifecycle() {
	given, when, then := s.gherkin()

	given().
		aVerifiedAccountWithASession()

	when().
		aStudyIsCreatedAndPublished()

	then().
		theStudyShowsAsPublished()
}

func (s *ComponentTestSuite) aSignUpRequestIsIssued() *ComponentTestSuite {
	s.signUpArgs = model.SignUpArgs{
		Email:    "joedoe@example.com",
		Nickname: "joedoe",
		Password: "SuperSecret",
	}
	s.signUpStatus = s.doJSON(http.MethodPost, "/sign-up", s.signUpArgs, &s.account)
	return s
}

func (s *ComponentTestSuite) theSignUpResponseContainsAFreshAccount() *ComponentTestSuite {
	s.Require().Equal(http.StatusCreated, s.signUpStatus)
	s.Require().Equal(s.signUpArgs.Email, s.account.Email)
	s.Require().Equal(s.signUpArgs.Nickname, s.account.Nickname)
	s.Require().False(s.account.EmailVerified)
	s.Require().NotEmpty(s.account.ID)
	return s
}

func (s *ComponentTestSuite) aVerificationMailWillEventuallyBeDelivered() *ComponentTestSuite {
	mail := s.awaitMailFor(s.signUpArgs.Email)
	s.Require().Contains(mail.Body, "/check-email-token")

	match := tokenParamRe.FindStringSubmatch(mail.Body)
	s.Require().Len(match, 2)
	s.verificationToken = match[1]
	return s
}

func (s *ComponentTestSuite) aSignedUpAccount() *ComponentTestSuite {
	return s.aSignUpRequestIsIssued().
		theSignUpResponseContainsAFreshAccount().
		aVerificationMailWillEventuallyBeDelivered()
}

func (s *ComponentTestSuite) theMailedVerificationLinkIsFollowed() *ComponentTestSuite {
	var session struct {
		Account      model.Account `json:"account"`
		SessionToken string        `json:"session_token"`
	}
	path := "/check-email-token?token=" + url.QueryEscape(s.verificationToken) +
		"&email=" + url.QueryEscape(s.signUpArgs.Email)
	status := s.doJSON(http.MethodGet, path, nil, &session)
	s.Require().Equal(http.StatusOK, status)
	s.account = session.Account
	s.sessionToken = session.SessionToken
	return s
}

func (s *ComponentTestSuite) theVerificationResponseContainsASession() *ComponentTestSuite {
	s.Require().NotEmpty(s.sessionToken)
	s.Require().True(s.account.EmailVerified)
	return s
}

func (s *ComponentTestSuite) theAccountShowsAsVerified() *ComponentTestSuite {
	var account model.Account
	status := s.doJSON(http.MethodGet, "/accounts/"+s.account.Nickname, nil, &account)
	s.Require().Equal(http.StatusOK, status)
	s.Require().True(account.EmailVerified)
	return s
}

func (s *ComponentTestSuite) aVerifiedAccount() *ComponentTestSuite {
	s.aSignedUpAccount().
		theMailedVerificationLinkIsFollowed().
		theVerificationResponseContainsASession()
	// forget the session so the login flow has to earn a new one
	s.sessionToken = ""
	return s
}

func (s *ComponentTestSuite) anEmailLoginIsRequested() *ComponentTestSuite {
	status := s.doJSON(http.MethodPost, "/email-login", map[string]string{"email": s.signUpArgs.Email}, nil)
	s.Require().Equal(http.StatusOK, status)
	return s
}

func (s *ComponentTestSuite) aLoginMailWillEventuallyBeDelivered() *ComponentTestSuite {
	mail := s.awaitMailFor(s.signUpArgs.Email)
	s.Require().Contains(mail.Body, "/login-by-email")

	match := tokenParamRe.FindStringSubmatch(mail.Body)
	s.Require().Len(match, 2)
	s.loginToken = match[1]
	return s
}

func (s *ComponentTestSuite) theMailedLoginLinkAuthenticates() *ComponentTestSuite {
	var session struct {
		Account      model.Account `json:"account"`
		SessionToken string        `json:"session_token"`
	}
	path := "/login-by-email?token=" + url.QueryEscape(s.loginToken) +
		"&email=" + url.QueryEscape(s.signUpArgs.Email)
	status := s.doJSON(http.MethodGet, path, nil, &session)
	s.Require().Equal(http.StatusOK, status)
	s.Require().NotEmpty(session.SessionToken)
	s.Require().Equal(s.account.ID, session.Account.ID)
	return s
}

func (s *ComponentTestSuite) aVerifiedAccountWithASession() *ComponentTestSuite {
	return s.aSignedUpAccount().
		theMailedVerificationLinkIsFollowed().
		theVerificationResponseContainsASession()
}

func (s *ComponentTestSuite) aStudyIsCreatedAndPublished() *ComponentTestSuite {
	s.createStudyArgs = model.CreateStudyArgs{
		Path:             "go-study",
		Title:            "Go Study",
		ShortDescription: "weekly deep dives",
	}
	var study model.Study
	status := s.doJSON(http.MethodPost, "/studies", s.createStudyArgs, &study)
	s.Require().Equal(http.StatusCreated, status)
	s.Require().False(study.Published)

	status = s.doJSON(http.MethodPost, "/studies/"+s.createStudyArgs.Path+"/publish", nil, nil)
	s.Require().Equal(http.StatusOK, status)
	return s
}

func (s *ComponentTestSuite) theStudyShowsAsPublished() *ComponentTestSuite {
	var study model.Study
	status := s.doJSON(http.MethodGet, "/studies/"+s.createStudyArgs.Path, nil, &study)
	s.Require().Equal(http.StatusOK, status)
	s.Require().True(study.Published)

	var isManager bool
	for _, manager := range study.Managers {
		if manager.ID == s.account.ID {
			isManager = true
		}
	}
	s.Require().True(isManager)
	return s
}
