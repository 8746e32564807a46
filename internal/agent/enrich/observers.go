package enrich

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	"github.com/clubchat-core/server/internal/agent/model"
	logx "github.com/clubchat-core/server/pkg/logger"
)

// newCallbacks logs prompt rendering and model usage for one chain run.
func newCallbacks(modelName string) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(modelName)).
		Prompt(newPromptHandler()).
		Handler()
}

func newModelHandler(modelName string) *callbackHelper.ModelCallbackHandler {
	return &callbackHelper.ModelCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *einomodel.CallbackOutput) context.Context {
			if output == nil || output.Message == nil || output.Message.ResponseMeta == nil || output.Message.ResponseMeta.Usage == nil {
				logx.Debug().Str("node", info.Name).Msg("enrichment model finished without usage")
				return ctx
			}
			usage := output.Message.ResponseMeta.Usage
			inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
			logx.Debug().
				Str("node", info.Name).
				Str("model", modelName).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("node", info.Name).Str("model", modelName).Msg("enrichment model error")
			return ctx
		},
	}
}

func newPromptHandler() *callbackHelper.PromptCallbackHandler {
	return &callbackHelper.PromptCallbackHandler{
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *prompt.CallbackOutput) context.Context {
			if output != nil && len(output.Result) > 0 {
				last := output.Result[len(output.Result)-1]
				if last != nil {
					logx.Debug().Str("node", info.Name).Int("messages", len(output.Result)).Str("task", last.Content).Msg("enrichment prompt rendered")
				}
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("node", info.Name).Msg("enrichment prompt error")
			return ctx
		},
	}
}
