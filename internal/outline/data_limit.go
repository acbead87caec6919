package outline

import (
	"context"
	"net/http"
)

type dataLimitReq struct {
	Limit struct {
		Bytes int64 `json:"bytes"`
	} `json:"limit"`
}

func newDataLimitReq(bytesLimit int64) dataLimitReq {
	var req dataLimitReq
	req.Limit.Bytes = bytesLimit
	return req
}

// SetDataLimit sets an explicit limit on one key. A limit of 0 blocks the key.
func (c *Client) SetDataLimit(ctx context.Context, id int, bytesLimit int64) (bool, error) {
	return accepted(c.doJSON(ctx, http.MethodPut, keyPath(id)+"/data-limit", newDataLimitReq(bytesLimit), nil))
}

// RemoveDataLimit drops the key's explicit limit so the server default applies again.
func (c *Client) RemoveDataLimit(ctx context.Context, id int) (bool, error) {
	return accepted(c.doJSON(ctx, http.MethodDelete, keyPath(id)+"/data-limit", nil, nil))
}
