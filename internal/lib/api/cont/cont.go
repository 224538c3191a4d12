package cont

import "context"

type ctxKey string

const userKey ctxKey = "api-user"

// PutUser stores the authenticated API user in ctx.
func PutUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey, username)
}

func GetUser(ctx context.Context) string {
	username, _ := ctx.Value(userKey).(string)
	return username
}
