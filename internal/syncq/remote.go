package syncq

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pkordes/crimsoncollab/backend/internal/apiclient"
	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// HTTPRemote pushes operations to another instance of this service through
// its POST /api/sync endpoint.
type HTTPRemote struct {
	client *apiclient.Client
}

// NewHTTPRemote returns a Remote that talks to the API at baseURL.
func NewHTTPRemote(baseURL string, opts ...apiclient.Option) *HTTPRemote {
	return &HTTPRemote{client: apiclient.New(baseURL, opts...)}
}

// Push sends op and returns the remote's verdict. A 400 or 422 answer means
// the remote will never accept op; the error then wraps domain.ErrValidation.
func (r *HTTPRemote) Push(ctx context.Context, op domain.SyncOperation) (domain.SyncOutcome, error) {
	receipt, err := r.client.PushSyncOperation(ctx, op)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity) {
		return "", fmt.Errorf("syncq.HTTPRemote.Push: %w: %w", domain.ErrValidation, err)
	}
	if err != nil {
		return "", fmt.Errorf("syncq.HTTPRemote.Push: %w", err)
	}
	if receipt.Outcome == "" {
		return domain.OutcomeApplied, nil
	}
	return receipt.Outcome, nil
}
