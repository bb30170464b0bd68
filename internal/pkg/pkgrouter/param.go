package pkgrouter

import (
	"context"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
)

// GetParam reads a path parameter from the request context (as stored by httprouter).
func GetParam(ctx context.Context, key string) string {
	return httprouter.ParamsFromContext(ctx).ByName(key)
}

// GetParamID reads a positive integer path parameter. Anything else cannot
// name a row, so it is reported as "<resource> not found".
func GetParamID(ctx context.Context, key, resource string) (int64, error) {
	id, err := strconv.ParseInt(GetParam(ctx, key), 10, 64)
	if err != nil || id < 1 {
		return 0, pkgerror.NewBusiness(resource+" not found", pkgerror.CodeNotFound)
	}
	return id, nil
}
