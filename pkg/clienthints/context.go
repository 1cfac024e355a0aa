package clienthints

import (
	"context"

	"github.com/dmitrymomot/adaptive/pkg/device"
)

type (
	sourceContextKey      struct{}
	infoContextKey        struct{}
	fingerprintContextKey struct{}
)

func WithSource(ctx context.Context, src *Source) context.Context {
	return context.WithValue(ctx, sourceContextKey{}, src)
}

func SourceFromContext(ctx context.Context) (*Source, error) {
	src, ok := ctx.Value(sourceContextKey{}).(*Source)
	if !ok || src == nil {
		return nil, ErrNoSourceInCtx
	}
	return src, nil
}

func WithInfo(ctx context.Context, info device.Info) context.Context {
	return context.WithValue(ctx, infoContextKey{}, info)
}

func InfoFromContext(ctx context.Context) (device.Info, bool) {
	info, ok := ctx.Value(infoContextKey{}).(device.Info)
	return info, ok
}

func WithFingerprint(ctx context.Context, fp string) context.Context {
	return context.WithValue(ctx, fingerprintContextKey{}, fp)
}

func FingerprintFromContext(ctx context.Context) string {
	fp, _ := ctx.Value(fingerprintContextKey{}).(string)
	return fp
}
