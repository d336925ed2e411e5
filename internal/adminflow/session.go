package adminflow

import (
	"errors"

	"github.com/moonlight-dining/tableside/internal/api"
	"github.com/moonlight-dining/tableside/internal/notify"
	"github.com/moonlight-dining/tableside/pkg/models"
	"github.com/sirupsen/logrus"
)

// ErrLoginInFlight is returned when Login is called while a previous
// attempt has not settled; the submit control stays disabled until then.
var ErrLoginInFlight = errors.New("login already in progress")

// Session is the admin's authenticated context, built on login and torn
// down on logout. It is passed explicitly to the admin flows instead of
// living in ambient storage.
type Session struct {
	client   *api.Client
	notifier notify.Notifier
	logger   *logrus.Logger

	profile  *models.LoginResponse
	inFlight bool
}

func NewSession(client *api.Client, notifier notify.Notifier, logger *logrus.Logger) *Session {
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Session{client: client, notifier: notifier, logger: logger}
}

// Login authenticates and initializes the session. The attempt is
// single-flight: a second call while one is pending is rejected.
func (s *Session) Login(username, password string) error {
	if s.inFlight {
		return ErrLoginInFlight
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()

	profile, err := s.client.Login(username, password)
	if err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("Admin login failed")
		s.notifier.Error(err.Error())
		return err
	}

	s.profile = profile
	s.notifier.Success("Welcome back, " + profile.FullName + "!")
	return nil
}

// Logout tears the session down.
func (s *Session) Logout() {
	if s.profile != nil {
		s.logger.WithField("username", s.profile.Username).Info("Admin logged out")
	}
	s.profile = nil
}

func (s *Session) LoggedIn() bool {
	return s.profile != nil
}

func (s *Session) Token() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.Token
}

func (s *Session) Profile() *models.LoginResponse {
	return s.profile
}
