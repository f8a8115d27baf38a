// Package main is the Lambda entry point for the menu photo API.
//
// The same HTTP handler as menu-web runs behind API Gateway HTTP API
// (payload v2). The Gemini API key comes from GEMINI_API_KEY when set,
// otherwise from the SSM SecureString named by MENULENS_SSM_API_KEY_PARAM.
//
// Studio state is per execution environment; a menu analyzed on one warm
// container is not visible to another.
package main

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/menu-lens/internal/chat"
	"github.com/fpang/menu-lens/internal/cli"
	"github.com/fpang/menu-lens/internal/config"
	"github.com/fpang/menu-lens/internal/httpapi"
	"github.com/fpang/menu-lens/internal/lambdaboot"
	"github.com/fpang/menu-lens/internal/logging"
)

var adapter *httpadapter.HandlerAdapterV2

func init() {
	initStart := time.Now()
	logging.InitJSON()

	ctx := context.Background()
	cfg := config.Load()
	fromSSM := cfg.APIKey == ""

	aws := lambdaboot.InitAWS(ctx)
	apiKey, err := lambdaboot.ResolveGeminiKey(ctx, cfg.APIKey, aws.SSM, cfg.SSMAPIKeyParam)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve Gemini API key")
	}
	cfg.APIKey = apiKey

	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	st, err := cli.NewStudio(client, cfg, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	adapter = httpadapter.NewV2(httpapi.NewHandler(st))

	startup := lambdaboot.StartupLog("menu-lambda", initStart).
		Config("commit", commitHash).
		Config("buildTime", buildTime).
		Config("textModel", cfg.TextModel).
		Config("imageModel", cfg.ImageModel).
		Config("variations", strconv.Itoa(cfg.Variations)).
		Feature("apiKeyFromSSM", fromSSM)
	if fromSSM {
		startup.SSMParam("geminiApiKey", cfg.SSMAPIKeyParam)
	}
	startup.Log()
}

func main() {
	lambda.Start(adapter.ProxyWithContext)
}
