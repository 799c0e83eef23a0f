package manifest

import (
	"github.com/sirupsen/logrus"
	vfs "github.com/twpayne/go-vfs"
)

// Option configures a Resolver or Validator.
type Option func(*settings)

type settings struct {
	fs     vfs.FS
	logger logrus.FieldLogger
}

// FS sets the filesystem descriptors are read from.
func FS(fs vfs.FS) Option {
	return func(s *settings) {
		s.fs = fs
	}
}

// Logger sets the logger.
func Logger(l logrus.FieldLogger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func newSettings(opts []Option) settings {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.fs == nil {
		s.fs = vfs.HostOSFS
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	return s
}
