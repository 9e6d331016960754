//go:build lambda
// +build lambda

package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/davecgh/go-spew/spew"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rgehrsitz/withholding/internal/api"
	"github.com/rgehrsitz/withholding/internal/audit"
	"github.com/rgehrsitz/withholding/internal/calculation"
	"github.com/rgehrsitz/withholding/internal/config"
	"github.com/rgehrsitz/withholding/internal/logger"
)

var ginLambda *ginadapter.GinLambda

func init() {
	settings, err := config.LoadSettings("")
	if err != nil {
		panic(err)
	}
	if err := logger.InitLogger(settings.Stage, settings.Log.Level); err != nil {
		panic(err)
	}
	log := logger.Log

	rules, err := config.NewRulesLoader().Load(settings.Rules.Path)
	if err != nil {
		log.Fatal("failed to load rules", zap.Error(err))
	}

	// The store lives for the life of the execution environment.
	store, err := audit.Open(context.Background(), settings.Audit, func(err error, wait time.Duration) {
		log.Warn("audit append failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		log.Fatal("failed to open audit store", zap.Error(err), zap.String("driver", settings.Audit.Driver))
	}

	engine := calculation.NewCalculationEngine(rules, store.Sink,
		calculation.WithLogger(log.Sugar()),
		calculation.WithStrictJurisdictions(settings.Engine.StrictJurisdictions),
	)

	gin.SetMode(gin.ReleaseMode)
	r := api.NewRouter(api.NewWithholdingHandler(engine, rules, log), log)
	ginLambda = ginadapter.New(r)

	log.Info("lambda initialised",
		zap.String("rules", rules.Metadata.Version),
		zap.String("audit_driver", store.Driver))
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if ce := logger.Log.Check(zap.DebugLevel, "received lambda request"); ce != nil {
		ce.Write(zap.String("path", req.Path), zap.String("request", spew.Sdump(req)))
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Log.Sync() //nolint:errcheck
	lambda.Start(Handler)
}
