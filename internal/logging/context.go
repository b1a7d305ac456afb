package logging

import (
	"context"
	"slices"
)

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying the given key-value pairs. Both
// backends add them to every record logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, fieldsKey{}, slices.Concat(fieldsFrom(ctx), args))
}

func fieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

// withContextFields puts the context fields in front of args.
func withContextFields(ctx context.Context, args []any) []any {
	fields := fieldsFrom(ctx)
	if len(fields) == 0 {
		return args
	}
	return slices.Concat(fields, args)
}
