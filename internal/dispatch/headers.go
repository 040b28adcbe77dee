package dispatch

import (
	"context"

	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
	"github.com/loykin/servicecall/internal/credential"
)

// CredentialSource yields the stored credential, if any.
type CredentialSource interface {
	Load(ctx context.Context) (credential.Credential, bool, error)
}

// BuildHeaders returns the headers for a call with the given intent.
// Content negotiation is left to the server for downloads.
func BuildHeaders(ctx context.Context, action string, creds CredentialSource) map[string]string {
	hdrs := map[string]string{}
	if action != constants.ActionDownload {
		hdrs["Accept"] = constants.ContentTypeJSON
		hdrs["Content-Type"] = constants.ContentTypeJSON
	}
	if creds == nil {
		return hdrs
	}
	c, ok, err := creds.Load(ctx)
	if err != nil {
		common.GetLogger().WithComponent("dispatch").Warn("failed to read credential", "error", err)
		return hdrs
	}
	if ok {
		hdrs[constants.HeaderAuthorization] = c.Authorization()
	}
	return hdrs
}
