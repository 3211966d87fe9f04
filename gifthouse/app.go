package gifthouse

import (
	"log/slog"

	"github.com/ellavondegurechaff/gogift/gifthouse/database"
	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/ellavondegurechaff/gogift/gifthouse/engine"
	"github.com/ellavondegurechaff/gogift/gifthouse/services"
)

func New(cfg Config, version string, commit string) *App {
	return &App{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

// App bundles every long-lived dependency of the auction host.
type App struct {
	Cfg     Config
	Version string
	Commit  string

	DB            *database.DB
	AuctionRepo   repositories.AuctionRepository
	UserRepo      repositories.UserRepository
	Registry      *engine.Registry
	SpacesService *services.SpacesService
}

func (a *App) Close() {
	if a.Registry != nil {
		a.Registry.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	slog.Info("GoGift shut down",
		slog.String("version", a.Version),
		slog.String("commit", a.Commit))
}
