package outline

import (
	"context"
	"net/http"
)

type serverInfo struct {
	Name               string     `json:"name"`
	ServerID           string     `json:"serverId"`
	MetricsEnabled     bool       `json:"metricsEnabled"`
	Version            string     `json:"version"`
	PortForNewKeys     int        `json:"portForNewAccessKeys"`
	HostnameForKeys    string     `json:"hostnameForAccessKeys"`
	AccessKeyDataLimit *dataLimit `json:"accessKeyDataLimit,omitempty"`
}

// ServerInfo is the subset of GET /server the bot reports.
type ServerInfo struct {
	Name             string
	ServerID         string
	Version          string
	MetricsEnabled   bool
	DefaultDataLimit *int64
}

func (c *Client) serverInfo(ctx context.Context) (serverInfo, error) {
	var out serverInfo
	if err := c.doJSON(ctx, http.MethodGet, "/server", nil, &out); err != nil {
		return serverInfo{}, err
	}
	return out, nil
}

func (s serverInfo) defaultLimit() *int64 {
	if s.AccessKeyDataLimit == nil {
		return nil
	}
	return s.AccessKeyDataLimit.Bytes
}

func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	s, err := c.serverInfo(ctx)
	if err != nil {
		return ServerInfo{}, err
	}
	return ServerInfo{
		Name:             s.Name,
		ServerID:         s.ServerID,
		Version:          s.Version,
		MetricsEnabled:   s.MetricsEnabled,
		DefaultDataLimit: s.defaultLimit(),
	}, nil
}

// DefaultDataLimit returns the server-wide limit applied to keys without their
// own, nil when none is configured. It never fails: the value only feeds the
// fallback for keys without a limit, so an unreachable or unreadable /server
// reads as no default.
func (c *Client) DefaultDataLimit(ctx context.Context) *int64 {
	s, err := c.serverInfo(ctx)
	if err != nil {
		return nil
	}
	return s.defaultLimit()
}

func (c *Client) SetDefaultDataLimit(ctx context.Context, bytesLimit int64) (bool, error) {
	return accepted(c.doJSON(ctx, http.MethodPut, "/server/access-key-data-limit", newDataLimitReq(bytesLimit), nil))
}

func (c *Client) RemoveDefaultDataLimit(ctx context.Context) (bool, error) {
	return accepted(c.doJSON(ctx, http.MethodDelete, "/server/access-key-data-limit", nil, nil))
}
