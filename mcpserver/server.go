// Package mcpserver 通过 MCP（stdio 上的 JSON-RPC）暴露两个工具：
// calculate_utility 与 find_best_car。
//
// 工具结果为缩进 JSON 文本，效用值不做四舍五入。参数缺失/类型错误以及打分错误
// 以 IsError 的工具结果返回；未知工具名由协议层拒绝。
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
	"github.com/rushteam/evrank/logging"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/rank"
)

const (
	ServerName    = "utility-function"
	ServerVersion = "0.1.0"

	ToolCalculateUtility = "calculate_utility"
	ToolFindBestCar      = "find_best_car"
)

// featureDescriptions 是各特征参数在工具 schema 中的说明（含单位）。
var featureDescriptions = map[string]string{
	"price":        "Car price in euros",
	"range":        "Range in kilometers",
	"efficiency":   "Efficiency in Wh/km",
	"acceleration": "0-100km/h time in seconds",
	"fast_charge":  "Fast charging power in kW",
	"seat_count":   "Number of seats",
}

// Server 是工具协议适配层，只做参数解析与结果序列化，打分语义全部来自 rank.Ranker。
type Server struct {
	ranker *rank.Ranker
	logger *log.Logger
	mcp    *server.MCPServer
}

// Option Server 配置选项
type Option func(*Server)

// WithLogger 设置 logger（必须写 stderr，stdout 是协议通道）
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrDiscard(l)
	}
}

func New(ranker *rank.Ranker, opts ...Option) *Server {
	s := &Server{
		ranker: ranker,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false))
	s.mcp.AddTool(calculateUtilityTool(), s.handleCalculateUtility)
	s.mcp.AddTool(findBestCarTool(), s.handleFindBestCar)
	return s
}

// MCP 返回底层的 MCPServer，便于挂载到其它传输层。
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve 在 in/out 上运行 stdio 传输，直到 ctx 取消或输入结束。
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("mcp server listening on stdio", "name", ServerName, "version", ServerVersion)
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, in, out)
}

func calculateUtilityTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Calculate the utility score for a car based on a user's preferences"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The username/ID whose utility function to use")),
	}
	for _, key := range feature.Keys {
		opts = append(opts, mcp.WithNumber(key, mcp.Required(), mcp.Description(featureDescriptions[key])))
	}
	return mcp.NewTool(ToolCalculateUtility, opts...)
}

func findBestCarTool() mcp.Tool {
	properties := map[string]any{
		"name": map[string]any{"type": "string"},
	}
	required := make([]string, 0, len(feature.Keys))
	for _, key := range feature.Keys {
		properties[key] = map[string]any{"type": "number"}
		required = append(required, key)
	}
	return mcp.NewTool(ToolFindBestCar,
		mcp.WithDescription("Find the best car from an array based on a user's utility function"),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("The username/ID whose utility function to use")),
		mcp.WithArray("cars",
			mcp.Required(),
			mcp.Description("Array of car objects with features"),
			mcp.Items(map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			}),
		),
	)
}

type utilityResponse struct {
	UserID           string             `json:"user_id"`
	Utility          float64            `json:"utility"`
	CoefficientsUsed model.Coefficients `json:"coefficients_used"`
	CarFeatures      map[string]any     `json:"car_features"`
}

type bestCarResponse struct {
	UserID               string             `json:"user_id"`
	BestCar              *core.Candidate    `json:"best_car"`
	AllCarsWithUtilities []*core.Candidate  `json:"all_cars_with_utilities"`
	CoefficientsUsed     model.Coefficients `json:"coefficients_used"`
}

func (s *Server) handleCalculateUtility(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	userID, err := stringArg(args, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	carFeatures := make(map[string]any, len(feature.Keys))
	for _, key := range feature.Keys {
		v, ok := args[key]
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("missing required argument %q", key)), nil
		}
		carFeatures[key] = v
	}

	score, err := s.ranker.ScoreOne(ctx, userID, core.NewCandidate(carFeatures))
	if err != nil {
		return s.toolError(ToolCalculateUtility, userID, err), nil
	}
	return jsonResult(utilityResponse{
		UserID:           userID,
		Utility:          score.Candidate.Utility,
		CoefficientsUsed: score.Coefficients,
		CarFeatures:      carFeatures,
	})
}

func (s *Server) handleFindBestCar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	userID, err := stringArg(args, "user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := args["cars"]
	if !ok {
		return mcp.NewToolResultError(`missing required argument "cars"`), nil
	}
	cars, err := core.CandidatesFromAny(raw)
	if err != nil {
		return s.toolError(ToolFindBestCar, userID, err), nil
	}

	result, err := s.ranker.RankMany(ctx, userID, cars)
	if err != nil {
		return s.toolError(ToolFindBestCar, userID, err), nil
	}
	return jsonResult(bestCarResponse{
		UserID:               userID,
		BestCar:              result.Best,
		AllCarsWithUtilities: result.Scored,
		CoefficientsUsed:     result.Coefficients,
	})
}

func (s *Server) toolError(tool, userID string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed", "tool", tool, "user_id", userID, "err", err)
	return mcp.NewToolResultError(err.Error())
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
