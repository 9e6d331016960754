package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/domain"
	"github.com/rgehrsitz/withholding/internal/logger"
)

// app is the process state every command builds on.
type app struct {
	settings config.Settings
	log      *zap.Logger
	rules    *domain.RuleTable
}

// load reads settings, applies flag overrides, starts the logger and loads
// the rule table.
func (o *rootOptions) load() (*app, error) {
	settings, err := config.LoadSettings(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.rulesPath != "" {
		settings.Rules.Path = o.rulesPath
	}
	if o.logLevel != "" {
		settings.Log.Level = o.logLevel
	}

	if err := logger.InitLogger(settings.Stage, settings.Log.Level); err != nil {
		return nil, err
	}

	rules, err := config.NewRulesLoader().Load(settings.Rules.Path)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("rules loaded",
		zap.String("version", rules.Metadata.Version),
		zap.Int("jurisdictions", len(rules.Jurisdictions)))

	return &app{settings: settings, log: logger.Log, rules: rules}, nil
}

// engine builds a calculation engine over the loaded rules. A nil sink
// discards audit records.
func (a *app) engine(sink audit.Sink) *calculation.CalculationEngine {
	return calculation.NewCalculationEngine(a.rules, sink,
		calculation.WithLogger(a.log.Sugar()),
		calculation.WithStrictJurisdictions(a.settings.Engine.StrictJurisdictions),
	)
}

func (a *app) openAudit(ctx context.Context) (*audit.Store, error) {
	return audit.Open(ctx, a.settings.Audit, func(err error, wait time.Duration) {
		a.log.Warn("audit append failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
}
