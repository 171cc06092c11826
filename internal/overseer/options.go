package overseer

import "github.com/Iron-Ham/clusterexec/internal/logging"

type settings struct {
	logger *logging.Logger
}

// Option configures a Supervisor.
type Option func(*settings)

// WithLogger sets the logger used by the supervisor. Defaults to
// logging.NopLogger.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
