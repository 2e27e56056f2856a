package httpx

import "context"

type ctxKey string

const (
	CtxKeyOperatorID ctxKey = "operator_id"
	CtxKeyOperator   ctxKey = "operator_name"
)

// WithOperator stores the authenticated operator on ctx.
func WithOperator(ctx context.Context, id, username string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyOperatorID, id)
	return context.WithValue(ctx, CtxKeyOperator, username)
}

// OperatorID returns the authenticated operator's ID, or "".
func OperatorID(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyOperatorID).(string)
	return v
}

// OperatorName returns the authenticated operator's username, or "".
func OperatorName(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyOperator).(string)
	return v
}
