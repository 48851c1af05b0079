package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/exam-timetabler/internal/config"
	"github.com/jakechorley/exam-timetabler/pkg/core/timetabler"
	"github.com/jakechorley/exam-timetabler/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg    *config.Config
	Store  db.DatasetStore
	Engine *timetabler.Engine
	Logger *zap.Logger
	Ctx    context.Context
}
