package service

import (
	"sync"
	"time"

	"github.com/emzola/shelflog/config"
	"github.com/emzola/shelflog/internal/jsonlog"
	"github.com/emzola/shelflog/internal/mailer"
	"github.com/emzola/shelflog/repository"
)

type Service interface {
	books
	transfers
	// Ready reports whether the persistence layer can serve requests.
	Ready() bool
}

// Mailer sends templated emails.
type Mailer interface {
	Send(recipient, templateFile string, data interface{}) error
}

// service implements Service on top of a repository.
type service struct {
	config   config.Config
	wg       *sync.WaitGroup
	logger   *jsonlog.Logger
	repo     repository.Repository
	mailer   Mailer
	uploader Uploader
	now      func() time.Time
}

// New creates a new instance of Service. Background work such as completion
// emails is tracked on wg so callers can wait for it during shutdown. A mailer
// is configured only when SMTP settings are present.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	s := &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if cfg.MailEnabled() {
		s.mailer = mailer.New(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.Sender)
	}
	return s
}

func (s *service) Ready() bool {
	return s.repo.Ready()
}
