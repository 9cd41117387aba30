package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finsight/finsight-portal/internal/config"
)

// versionInfo holds version fields for one component.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionTool returns the mcp.Tool definition for the get_version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get finsight-portal version and backend status. Use this to verify connectivity."),
	)
}

// VersionToolHandler combines portal version info with the backend's,
// degrading gracefully when finsight-server is unreachable.
func VersionToolHandler(apiURL string) server.ToolHandlerFunc {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := map[string]versionInfo{
			"finsight_portal": {
				Version: config.GetVersion(),
				Build:   config.GetBuild(),
				Commit:  config.GetGitCommit(),
			},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/version", nil)
		if err == nil {
			if resp, rerr := httpClient.Do(req); rerr == nil {
				var serverResp map[string]string
				if json.NewDecoder(resp.Body).Decode(&serverResp) == nil {
					result["finsight_server"] = versionInfo{
						Version: serverResp["version"],
						Build:   serverResp["build"],
						Commit:  serverResp["git_commit"],
					}
				}
				resp.Body.Close()
			}
		}

		return jsonResult(result), nil
	}
}

// requireEntitlement wraps a tool handler with the premium gate.
func requireEntitlement(ent Entitlements, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !ent.IsEntitled(ctx) {
			return errorResult("Error: this tool requires an active entitlement. Complete a reward session or purchase to unlock it."), nil
		}
		return next(ctx, r)
	}
}
