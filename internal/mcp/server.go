package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/squarelan/verify-relay/internal/biz/domain"
	"github.com/squarelan/verify-relay/internal/biz/usecase"
)

// ModerationServer exposes the operator's moderation commands as MCP
// tools working directly on the relay's store
type ModerationServer struct {
	server  *mcp.Server
	modUC   *usecase.ModerationUsecase
	routeUC *usecase.RoutingUsecase
	log     *slog.Logger
}

// NewModerationServer creates the MCP server and registers its tools
func NewModerationServer(modUC *usecase.ModerationUsecase, routeUC *usecase.RoutingUsecase, version string, log *slog.Logger) *ModerationServer {
	if log == nil {
		log = slog.Default()
	}
	s := &ModerationServer{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "verify-relay",
			Version: version,
		}, nil),
		modUC:   modUC,
		routeUC: routeUC,
		log:     log.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

// Server returns the underlying MCP server
func (s *ModerationServer) Server() *mcp.Server {
	return s.server
}

// Run serves the tools over stdio until ctx is done or the client leaves
func (s *ModerationServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *ModerationServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_block",
		Description: "Report whether a guest is blocked from messaging the operator.",
	}, s.handleCheckBlock)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "block_user",
		Description: "Block a guest. Their messages are no longer relayed. The operator cannot be blocked.",
	}, s.handleBlockUser)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "unblock_user",
		Description: "Unblock a previously blocked guest.",
	}, s.handleUnblockUser)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "resolve_route",
		Description: "Find the guest who sent a relayed message, given its id in the operator chat.",
	}, s.handleResolveRoute)
}

// UserInput names one guest
type UserInput struct {
	UserID string `json:"user_id" jsonschema:"The numeric chat id of the guest"`
}

// BlockStatusOutput is the result of check_block
type BlockStatusOutput struct {
	UserID  string `json:"user_id"`
	Blocked bool   `json:"blocked"`
}

// ModerationOutput is the result of block_user and unblock_user
type ModerationOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *ModerationServer) handleCheckBlock(ctx context.Context, req *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, BlockStatusOutput, error) {
	userID, err := normalizeUserID(input.UserID)
	if err != nil {
		return nil, BlockStatusOutput{}, err
	}

	blocked, err := s.modUC.IsBlocked(ctx, userID)
	if err != nil {
		return nil, BlockStatusOutput{}, err
	}
	return nil, BlockStatusOutput{UserID: userID, Blocked: blocked}, nil
}

func (s *ModerationServer) handleBlockUser(ctx context.Context, req *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, ModerationOutput, error) {
	return s.setBlocked(ctx, input.UserID, true)
}

func (s *ModerationServer) handleUnblockUser(ctx context.Context, req *mcp.CallToolRequest, input UserInput) (*mcp.CallToolResult, ModerationOutput, error) {
	return s.setBlocked(ctx, input.UserID, false)
}

func (s *ModerationServer) setBlocked(ctx context.Context, rawID string, blocked bool) (*mcp.CallToolResult, ModerationOutput, error) {
	userID, err := normalizeUserID(rawID)
	if err != nil {
		return nil, ModerationOutput{}, err
	}

	err = s.modUC.SetBlocked(ctx, userID, blocked)
	if errors.Is(err, domain.ErrSelfModeration) {
		return nil, ModerationOutput{Success: false, Error: "cannot block the operator"}, nil
	}
	if err != nil {
		return nil, ModerationOutput{}, err
	}

	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	s.log.Info("moderation via mcp", "user_id", userID, "blocked", blocked)
	return nil, ModerationOutput{Success: true, Message: fmt.Sprintf("UID:%s %s successfully", userID, verb)}, nil
}

// RouteInput names one relayed message
type RouteInput struct {
	RelayedMessageID int `json:"relayed_message_id" jsonschema:"The id of the relayed message in the operator chat"`
}

// RouteOutput is the result of resolve_route
type RouteOutput struct {
	Found  bool   `json:"found"`
	UserID string `json:"user_id,omitempty"`
}

func (s *ModerationServer) handleResolveRoute(ctx context.Context, req *mcp.CallToolRequest, input RouteInput) (*mcp.CallToolResult, RouteOutput, error) {
	if input.RelayedMessageID <= 0 {
		return nil, RouteOutput{}, fmt.Errorf("relayed_message_id must be positive")
	}

	userID, err := s.routeUC.Resolve(ctx, input.RelayedMessageID)
	if errors.Is(err, domain.ErrRouteNotFound) {
		return nil, RouteOutput{Found: false}, nil
	}
	if err != nil {
		return nil, RouteOutput{}, err
	}
	return nil, RouteOutput{Found: true, UserID: userID}, nil
}

func normalizeUserID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("user_id is required")
	}
	digits := strings.TrimPrefix(id, "-")
	if digits == "" {
		return "", fmt.Errorf("user_id must be numeric: %q", raw)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("user_id must be numeric: %q", raw)
		}
	}
	return id, nil
}
