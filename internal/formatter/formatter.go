package formatter

import (
	"github.com/jacoelho/jsonview/internal/results"
)

// Formatter defines the interface for different output formats.
// Implementations are responsible for determining the output device (stdout, file, etc.).
type Formatter interface {
	Format(summary *results.Summary) error
}
