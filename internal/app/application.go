// Package app wires the campaign services to their persistence and
// rate-limiting dependencies. Service handles are constructed once at startup
// and passed by reference; nothing here holds per-request state.
package app

import (
	"github.com/rakkenlabs/qr-campaign/internal/app/services/draw"
	"github.com/rakkenlabs/qr-campaign/internal/app/services/redemption"
	"github.com/rakkenlabs/qr-campaign/internal/app/services/stats"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage/memory"
	"github.com/rakkenlabs/qr-campaign/internal/ratelimit"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Entries storage.EntryStore
	Codes   storage.CodeStore
}

// Limiters carries the rate-limit verdict providers. Nil limiters disable
// that dimension; per-identifier limiting is optional by design.
type Limiters struct {
	IP         ratelimit.Limiter
	Identifier ratelimit.Limiter
}

// Application ties the campaign services together.
type Application struct {
	log *logger.Logger

	Draw       *draw.Service
	Redemption *redemption.Service
	Stats      *stats.Service
}

// New builds a fully initialised application with the provided stores and
// limiters.
func New(stores Stores, limiters Limiters, drawCfg draw.Config, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Entries == nil || stores.Codes == nil {
		mem := memory.New()
		if stores.Entries == nil {
			stores.Entries = mem
		}
		if stores.Codes == nil {
			stores.Codes = mem
		}
	}

	drawService := draw.New(stores.Entries, stores.Codes, drawCfg, log).
		WithIPLimiter(limiters.IP).
		WithIdentifierLimiter(limiters.Identifier)

	return &Application{
		log:        log,
		Draw:       drawService,
		Redemption: redemption.New(stores.Codes, log),
		Stats:      stats.New(stores.Entries, stores.Codes, log),
	}
}
