package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	fastinginadapter "fastrack/internal/modules/fasting/adapter/in"
	fastingoutadapter "fastrack/internal/modules/fasting/adapter/out"
	fastingservice "fastrack/internal/modules/fasting/service"
	fastingusecase "fastrack/internal/modules/fasting/usecase"
	"fastrack/internal/platform/clock"
	"fastrack/internal/platform/config"
	"fastrack/internal/platform/id"
	uiapp "fastrack/internal/ui/app"
)

type App struct {
	FastingCLI fastinginadapter.CLIHandler
	Config     config.Config
	Logger     hclog.Logger

	projector *fastingoutadapter.SQLiteHistoryProjector
}

func New(ctx context.Context, cfg config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	projector, err := fastingoutadapter.NewSQLiteHistoryProjector(cfg.DBPath, nil)
	if err != nil {
		return nil, fmt.Errorf("new history projector: %w", err)
	}
	svc := fastingservice.NewTrackerService(ctx,
		clock.SystemClock{},
		id.UnixMillis{},
		fastingoutadapter.NewFileStateStore(cfg.StatePath),
		logger.Named("tracker"),
	)
	uc := fastingusecase.NewInteractor(svc,
		projector,
		fastingoutadapter.NewVaultJournalStore(cfg.JournalDir, nil),
		logger.Named("usecase"),
	)
	return &App{
		FastingCLI: fastinginadapter.NewCLIHandler(uc),
		Config:     cfg,
		Logger:     logger,
		projector:  projector,
	}, nil
}

func (a *App) Close() error {
	if a.projector == nil {
		return nil
	}
	return a.projector.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.DataDir, app.Config.TickInterval, app.FastingCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
